// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	SourceNotFoundId Id = iota + 1
	TargetUnwritableId
	RootNotRegisteredId
	ConfigLoadFailedId
	ArchiveUnreadableId
	SourceUnreadableId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // lookup key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink  // project documentation
	extLinks []HttpLink  // third-party references
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render formats the issue for the terminal. An empty stylePath selects
// glamour's default style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, links := range [][]HttpLink{i.docLinks, i.extLinks} {
			for _, link := range links {
				md.WriteString("\n- <" + string(link) + ">")
			}
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# Source not found

One of the paths given on the command line, or a file listed in a registered
root, does not exist. Sources are resolved relative to the current working
directory.

## Things you can try
- Check the spelling of the path and the directory you are running from:
~~~
$ ls -l <source>
~~~
- If the file was part of a registered root, it may have been removed after
  the root was scanned. Run the build again.`,
		extLinks: []HttpLink{"https://pkg.go.dev/io/fs#ErrNotExist"},
	}

	targetUnwritableIssue = &Issue{
		id: TargetUnwritableId,
		mdMsg: `
# Cannot write the archive

The target archive could not be created or written. Nothing was left behind:
a partially written target is removed.

## Things you can try
- Check that the parent directory exists and is writable.
- Check free disk space.
- Pick a different target path:
~~~
$ zipbundle /tmp/bundle.zip lib/lua
~~~`,
	}

	rootNotRegisteredIssue = &Issue{
		id: RootNotRegisteredId,
		mdMsg: `
# Directory is not a registered root

A directory source is only packed when it matches a registered root exactly.
In strict mode an unregistered directory fails the build.

## Things you can try
- List the registered roots:
~~~
$ zipbundle registry
~~~
- Register the directory in your configuration:
~~~cue
registry: [{root: "path/to/dir", prefix: "modules/dir", recursive: true}]
~~~
- Pass the directory's files individually, or run without ` + "`--strict`" + ` to skip it.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file exists but could not be parsed or does not match the schema.

## Things you can try
- Show which file is being loaded:
~~~
$ zipbundle config path
~~~
- Regenerate a fresh default file and compare:
~~~
$ zipbundle config dump
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	archiveUnreadableIssue = &Issue{
		id: ArchiveUnreadableId,
		mdMsg: `
# Cannot read the archive

The file is missing, truncated, or not a ZIP archive.

## Things you can try
- Rebuild the archive and inspect it again.
- Confirm the file type:
~~~
$ file <archive>
~~~`,
	}

	sourceUnreadableIssue = &Issue{
		id: SourceUnreadableId,
		mdMsg: `
# Source cannot be read

The source exists but its contents could not be read. Only regular files can
be packed: devices, sockets, pipes and directories that are not registered
roots are rejected, and so are files the current user may not read.

## Things you can try
- Check the file type and permissions:
~~~
$ ls -l <source>
~~~
- Grant read access:
~~~
$ chmod u+r <source>
~~~`,
		extLinks: []HttpLink{"https://pkg.go.dev/io/fs#ErrPermission"},
	}

	catalog = []*Issue{
		sourceNotFoundIssue,
		targetUnwritableIssue,
		rootNotRegisteredIssue,
		configLoadFailedIssue,
		archiveUnreadableIssue,
		sourceUnreadableIssue,
	}

	issues = func() map[Id]*Issue {
		m := make(map[Id]*Issue, len(catalog))
		for _, i := range catalog {
			m[i.Id()] = i
		}
		return m
	}()
)

// Values returns every catalog entry in Id order.
func Values() []*Issue {
	return slices.Clone(catalog)
}

func Get(id Id) *Issue {
	return issues[id]
}
