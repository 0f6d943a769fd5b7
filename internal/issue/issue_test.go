// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		SourceNotFoundId,
		TargetUnwritableId,
		RootNotRegisteredId,
		ConfigLoadFailedId,
		ArchiveUnreadableId,
		SourceUnreadableId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if SourceNotFoundId != 1 {
		t.Errorf("SourceNotFoundId = %d, want 1", SourceNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{SourceNotFoundId, false, "Source not found"},
		{TargetUnwritableId, false, "Cannot write the archive"},
		{RootNotRegisteredId, false, "not a registered root"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{ArchiveUnreadableId, false, "Cannot read the archive"},
		{SourceUnreadableId, false, "Source cannot be read"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != 6 {
		t.Fatalf("Values() returned %d issues, want 6", len(issues))
	}
	for i, issue := range issues {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), i+1)
		}
	}

	// The returned slice is a copy.
	issues[0] = nil
	if Values()[0] == nil {
		t.Error("Values() exposed the catalog backing array")
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	issue := Get(ConfigLoadFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ConfigLoadFailed issue should carry an external link")
	}
	links[0] = "mutated"
	if issue.ExtLinks()[0] == "mutated" {
		t.Error("ExtLinks() exposed internal state")
	}
	if len(issue.DocLinks()) != 0 {
		t.Errorf("DocLinks() = %v, want none", issue.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	tests := []struct {
		name        string
		issue       *Issue
		wantSeeAlso bool
	}{
		{
			name: "with links",
			issue: &Issue{
				id:       Id(9999),
				mdMsg:    "# Test Issue",
				docLinks: []HttpLink{"https://docs.example.com"},
				extLinks: []HttpLink{"https://external.example.com"},
			},
			wantSeeAlso: true,
		},
		{
			name:  "without links",
			issue: &Issue{id: Id(9998), mdMsg: "# Test Issue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := tt.issue.Render("dark")
			if err != nil {
				t.Fatalf("Render() returned error: %v", err)
			}
			if gotStyle != "dark" {
				t.Errorf("style = %q, want %q", gotStyle, "dark")
			}
			if !strings.HasPrefix(rendered, "# Test Issue") {
				t.Errorf("Render() = %q, want message first", rendered)
			}
			if got := strings.Contains(rendered, "See also"); got != tt.wantSeeAlso {
				t.Errorf("contains See also = %v, want %v", got, tt.wantSeeAlso)
			}
			for _, link := range append(tt.issue.DocLinks(), tt.issue.ExtLinks()...) {
				if !strings.Contains(rendered, string(link)) {
					t.Errorf("Render() missing link %s", link)
				}
			}
		})
	}
}
