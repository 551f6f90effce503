package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicHeading(t *testing.T) {
	s := New()
	assert.Equal(t, "overview", s.Slugify("Overview"))
}

func TestWithSpaces(t *testing.T) {
	s := New()
	assert.Equal(t, "error-handling-patterns", s.Slugify("Error Handling Patterns"))
}

func TestWithPunctuation(t *testing.T) {
	s := New()
	assert.Equal(t, "the-resultt-type", s.Slugify("The Result<T> Type!"))
}

func TestDuplicateHeadings(t *testing.T) {
	s := New()
	assert.Equal(t, "overview", s.Slugify("Overview"))
	assert.Equal(t, "overview-1", s.Slugify("Overview"))
	assert.Equal(t, "overview-2", s.Slugify("Overview"))
}

func TestAllPunctuation(t *testing.T) {
	s := New()
	assert.Equal(t, "heading", s.Slugify("!@#$%^&*()"))
}

func TestLeadingTrailingSpaces(t *testing.T) {
	s := New()
	assert.Equal(t, "hello-world", s.Slugify("  Hello World  "))
}

func TestConsecutiveHyphens(t *testing.T) {
	s := New()
	assert.Equal(t, "hello-world", s.Slugify("Hello  --  World"))
}

func TestUnderscoresPreserved(t *testing.T) {
	s := New()
	assert.Equal(t, "my_function_name", s.Slugify("my_function_name"))
}

func TestNumbers(t *testing.T) {
	s := New()
	assert.Equal(t, "chapter-1-introduction", s.Slugify("Chapter 1: Introduction"))
}

func TestUnicodeRemoved(t *testing.T) {
	s := New()
	assert.Equal(t, "hllo-wrld", s.Slugify("Héllo Wörld"))
}

func TestEmptyHeading(t *testing.T) {
	s := New()
	assert.Equal(t, "heading", s.Slugify(""))
}

func TestOnlyHyphens(t *testing.T) {
	s := New()
	assert.Equal(t, "heading", s.Slugify("---"))
}

func TestMixedDuplicates(t *testing.T) {
	s := New()
	assert.Equal(t, "intro", s.Slugify("Intro"))
	assert.Equal(t, "setup", s.Slugify("Setup"))
	assert.Equal(t, "intro-1", s.Slugify("Intro"))
	assert.Equal(t, "setup-1", s.Slugify("Setup"))
	assert.Equal(t, "intro-2", s.Slugify("Intro"))
}
