// Package export writes the bookmark tree as a Netscape bookmark file.
package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/user/bookmarks/internal/db"
	"github.com/user/bookmarks/internal/sources"
)

const header = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!--This is an automatically generated file.
It will be read and overwritten.
Do Not Edit! -->
<HTML xmlns:duckduckgo="` + sources.DDGNamespace + `">
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<Title>Bookmarks</Title>
<H1>Bookmarks</H1>
`

// WriteHTML writes nodes (the top-level entities) and their subtrees. A
// bookmark listed in favorites is flagged so it is restored as a favorite on
// import.
func WriteHTML(w io.Writer, nodes []db.Node, favorites []db.Node) error {
	favs := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		favs[f.NodeID()] = true
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(header)
	writeList(bw, nodes, favs, 0)
	bw.WriteString("</HTML>\n")
	return bw.Flush()
}

func writeList(w *bufio.Writer, nodes []db.Node, favs map[string]bool, depth int) {
	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(w, "%s<DL><p>\n", indent)
	for _, n := range nodes {
		switch n := n.(type) {
		case db.Folder:
			fmt.Fprintf(w, "%s    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", indent, n.DateAdded.Unix(), html.EscapeString(n.Title))
			writeList(w, n.Children, favs, depth+1)
		case db.Bookmark:
			fav := ""
			if n.IsFavorite || favs[n.ID] {
				fav = ` duckduckgo:favorite="true"`
			}
			fmt.Fprintf(w, "%s    <DT><A HREF=\"%s\" ADD_DATE=\"%d\"%s>%s</A>\n",
				indent, html.EscapeString(n.URL), n.DateAdded.Unix(), fav, html.EscapeString(n.Title))
		}
	}
	fmt.Fprintf(w, "%s</DL><p>\n", indent)
}
