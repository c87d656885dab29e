package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsset(t *testing.T) {
	assert.Equal(t, "/static/uploads/a.png", Asset("static/uploads/a.png"))
	assert.Equal(t, "/static/x.png", Asset("/static/x.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", Asset("https://cdn.example.com/a.png"))
	assert.Equal(t, "", Asset(""))
}

func TestNum(t *testing.T) {
	two := 2
	area := 42.5
	var missing *int

	assert.Equal(t, "2", Num(&two))
	assert.Equal(t, "42.5", Num(&area))
	assert.Equal(t, "", Num(missing))
	assert.Equal(t, "", Num(nil))
	assert.Equal(t, "7", Num(int64(7)))
}

func TestEngineLoadsTemplates(t *testing.T) {
	engine := New(false)
	assert.NoError(t, engine.Load())
}
