// Package graph builds the schema component graph that schemagraph draws.
//
// # Overview
//
// [Build] turns an ordered [schema.Mapping] into a [Graph]: one [Node] per
// component, classified into exactly one [Kind], plus the [Edge] list derived
// from the nodes' structural fields. The graph is built once and never
// mutated afterwards; layout and rendering read it concurrently-safe because
// nothing writes to it.
//
// # Classification
//
// [Classify] applies a fixed precedence, first match wins:
//
//  1. a reference indicator ($ref) gives [KindReference]
//  2. an alternatives list (anyOf / oneOf) gives [KindAnyOf]
//  3. type array or an items schema gives [KindArray]
//  4. properties, an additionalProperties schema or type object gives [KindObject]
//  5. anything else is [KindSimple], labelled "unknown" if it has no type
//
// Real schemas often carry fields for several kinds at once (a $ref next to a
// stray type), which is why the order is fixed rather than inferred.
//
// # Recursion
//
// Schemas reference each other freely, including themselves. The builder uses
// an explicit worklist and tracks every node as pending, in progress or done.
// Resolving a reference only needs the target's name, so it never re-enters
// classification and arbitrarily deep self or mutual recursion terminates.
//
// References to names that are not declared materialize a single memoized
// placeholder node ([Node.Unresolved]) so that no edge ever dangles.
//
// # Inline Schemas
//
// Inline primitive schemas (an item of type string, an alternative of type
// integer) collapse into labels. Inline structured schemas (objects with
// properties, unions, arrays of those) become synthetic nodes named after
// their owner, for example "Pet.owner", "Pets.items" or "X.anyOf[1]".
//
// # Warnings
//
// Nothing about an individual entry is fatal. Entries without type
// information, unresolved references and ignored keywords are reported as
// [Warning] values on the graph. Only a nil mapping is rejected.
package graph
