package main

import (
	"reflect"
	"testing"
)

func TestSplitHosts(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"localhost", []string{"localhost"}},
		{" localhost , 127.0.0.1,,", []string{"localhost", "127.0.0.1"}},
		{"", nil},
	}
	for _, tc := range tests {
		if got := splitHosts(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitHosts(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
