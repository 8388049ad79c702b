package graph

import (
	"reflect"
	"testing"
)

func TestRecursiveGroups(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want [][]string
	}{
		{
			name: "Acyclic",
			src:  `{"A": {$ref: B}, "B": {type: string}}`,
			want: nil,
		},
		{
			name: "SelfLoop",
			src:  `{"Tree": {type: object, properties: {children: {type: array, items: {$ref: Tree}}}}}`,
			want: [][]string{{"Tree"}},
		},
		{
			name: "TwoCycle",
			src:  `{"A": {$ref: B}, "B": {$ref: A}}`,
			want: [][]string{{"A", "B"}},
		},
		{
			name: "Separate",
			src: `
C: {$ref: D}
A: {type: object, properties: {a: {$ref: A}}}
D: {anyOf: [{$ref: C}, {$ref: E}]}
E: {type: string}
`,
			want: [][]string{{"C", "D"}, {"A"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustBuild(t, tt.src)
			if got := g.RecursiveGroups(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RecursiveGroups = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecursiveSet(t *testing.T) {
	g := mustBuild(t, `{"A": {$ref: B}, "B": {$ref: A}, "C": {$ref: A}, "D": {type: array, items: {$ref: D}}}`)
	want := map[string]bool{"A": true, "B": true, "D": true}
	if got := g.RecursiveSet(); !reflect.DeepEqual(got, want) {
		t.Errorf("RecursiveSet = %v, want %v", got, want)
	}
}
