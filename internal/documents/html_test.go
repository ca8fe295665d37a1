package documents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVisibleText(t *testing.T) {
	text := ExtractVisibleText([]byte(samplePage), "text/html")

	assert.Contains(t, text, "# Failover")
	assert.Contains(t, text, "Promote the replica.")
	assert.Contains(t, text, "- Stop writes")
	assert.NotContains(t, text, "Postgres failover", "head is not visible")
	assert.NotContains(t, text, "Home | Docs")
	assert.NotContains(t, text, "secret banner")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "\n\n\n")
}

func TestExtractVisibleTextPassesThroughNonHTML(t *testing.T) {
	raw := `{"steps": ["drain"]}`
	assert.Equal(t, raw, ExtractVisibleText([]byte(raw), "application/json"))
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Postgres failover", ExtractTitle([]byte(samplePage)))
	assert.Equal(t, "Only heading", ExtractTitle([]byte("<body><h1> Only\n heading </h1></body>")))
	assert.Equal(t, "", ExtractTitle([]byte("<p>nothing</p>")))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 100))

	long := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
	assert.Equal(t, strings.Repeat("a", 60), clip(long, 100))

	hard := strings.Repeat("c", 200)
	assert.Len(t, clip(hard, 50), 50)
}
