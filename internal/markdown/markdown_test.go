package markdown

import (
	"strings"
	"testing"
)

func TestRenderEmpty(t *testing.T) {
	if got := Render(""); got != "" {
		t.Errorf("Render(\"\") = %q, want \"\"", got)
	}
	if got := Render("  \n"); got != "" {
		t.Errorf("Render(blank) = %q, want \"\"", got)
	}
}

func TestRenderRunbookAnswer(t *testing.T) {
	answer := "## Restart the service\n\n1. Drain traffic\n2. Run `systemctl restart api`\n\n| Step | Check |\n|---|---|\n| 1 | ~~old~~ ok |"
	html := Render(answer)
	for _, want := range []string{"<h2", "<ol>", "<code>systemctl restart api</code>", "<table>", "<del>old</del>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %s in: %s", want, html)
		}
	}
}

func TestRenderTaskList(t *testing.T) {
	html := Render("- [x] backup taken\n- [ ] restore verified")
	if !strings.Contains(html, "checked") {
		t.Errorf("Expected checked checkbox, got: %s", html)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	html := Render("```bash\nkubectl rollout restart deploy/api\n```")
	if !strings.Contains(html, "<pre") {
		t.Errorf("Expected <pre> block, got: %s", html)
	}
}

func TestRenderOmitsRawHTML(t *testing.T) {
	html := Render("before\n\n<script>alert(1)</script>\n\nafter")
	if strings.Contains(html, "<script>") {
		t.Errorf("raw script should be omitted, got: %s", html)
	}
	if !strings.Contains(html, "after") {
		t.Errorf("surrounding text lost, got: %s", html)
	}
}

func TestRenderExternalLinks(t *testing.T) {
	html := Render("[docs](https://kubernetes.io/docs/)")
	if !strings.Contains(html, `target="_blank"`) {
		t.Errorf("Expected target=_blank on external link, got: %s", html)
	}
	if !strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Errorf("Expected rel=noopener on external link, got: %s", html)
	}
}

func TestRenderInternalLinks(t *testing.T) {
	html := Render("[runbook](/runbooks/3)")
	if strings.Contains(html, `target="_blank"`) {
		t.Errorf("Internal link should NOT have target=_blank, got: %s", html)
	}
}

func TestRenderHardWraps(t *testing.T) {
	html := Render("line1\nline2")
	if !strings.Contains(html, "<br") {
		t.Errorf("Expected hard wrap <br>, got: %s", html)
	}
}

func TestFirstHeading(t *testing.T) {
	cases := map[string]string{
		"# Database failover\n\nsteps":      "Database failover",
		"intro\n\n## Rotate keys\n# Late":    "Rotate keys",
		"no headings here":                   "",
		"":                                   "",
	}
	for in, want := range cases {
		if got := FirstHeading(in); got != want {
			t.Errorf("FirstHeading(%q) = %q, want %q", in, got, want)
		}
	}
}
