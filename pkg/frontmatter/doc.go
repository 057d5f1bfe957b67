// Package frontmatter extracts YAML frontmatter from Markdown files.
//
// Frontmatter is delimited by lines containing only "---" at the start of the
// file and after the YAML block. rx uses it to read schemas and data
// documents embedded at the top of Markdown files:
//
//	---
//	type: //rec
//	required:
//	  title: //str
//	---
//	# Notes about this schema
//
// [Parse] decodes the block into any type:
//
//	doc, body, err := frontmatter.Parse[any](r)
//	if errors.Is(err, frontmatter.ErrNoFrontmatter) {
//		// plain Markdown
//	}
//
// Both Unix (LF) and Windows (CRLF) line endings are handled.
package frontmatter
