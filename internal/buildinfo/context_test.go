package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextAccessors(t *testing.T) {
	tests := []struct {
		name    string
		ctx     *Context
		version string
		date    string
	}{
		{name: "nil context", ctx: nil, version: UnknownValue, date: UnknownValue},
		{name: "empty version", ctx: &Context{BuildDate: "2026-01-01"}, version: UnknownValue, date: "2026-01-01"},
		{name: "valid version", ctx: NewContext("1.2.0", "2026-01-01", "abc"), version: "1.2.0", date: "2026-01-01"},
		{name: "pre-release tag", ctx: NewContext("1.2.0-beta.1", "", "abc"), version: "1.2.0-beta.1", date: UnknownValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.date, tt.ctx.GetBuildDate())
		})
	}
}

func TestMapIncludesGoVersion(t *testing.T) {
	m := NewContext("1.0.0", "2026-01-01", "deadbeef").Map()
	assert.Equal(t, "deadbeef", m["commit"])
	assert.NotEmpty(t, m["go_version"])
}
