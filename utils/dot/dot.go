// Package dot renders analysis graphs (simplified CFGs, points-to
// constraint graphs) to Graphviz dot and image files.
package dot

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/goccy/go-graphviz"
)

const tmplEdge = `{{define "edge" -}}
	{{printf "%q -> %q [ %s ]" .From .To .Attrs}}
{{- end}}`

const tmplNode = `{{define "node" -}}
	{{printf "%q [ %s ]" .ID .Attrs}}
{{- end}}`

const tmplGraph = `digraph {{.Name}} {
	label="{{.Title}}";
	labeljust="l";
	fontname="Arial";
	fontsize="14";
	rankdir="TB";

	node [shape="box" style="filled" fillcolor="honeydew" fontname="Verdana" penwidth="1.0" margin="0.05,0.0"];

	{{range .Nodes}}
	{{template "node" .}}
	{{- end}}

	{{- range .Edges}}
	{{template "edge" .}}
	{{- end}}
}
`

// DotNode is a single graph node.
type DotNode struct {
	ID    string
	Attrs DotAttrs
}

func (n *DotNode) String() string {
	return n.ID
}

// DotEdge is a directed edge between two nodes.
type DotEdge struct {
	From  *DotNode
	To    *DotNode
	Attrs DotAttrs
}

// DotAttrs are rendered dot attributes.
type DotAttrs map[string]string

func (p DotAttrs) List() []string {
	l := []string{}
	for k, v := range p {
		l = append(l, fmt.Sprintf("%s=%q;", k, v))
	}
	return l
}

func (p DotAttrs) String() string {
	return strings.Join(p.List(), " ")
}

// DotGraph is a directed graph renderable as dot.
type DotGraph struct {
	Name  string
	Title string
	Nodes []*DotNode
	Edges []*DotEdge
}

// Render writes the graph in dot syntax.
func (g *DotGraph) Render() ([]byte, error) {
	t := template.New("dot")
	for _, s := range []string{tmplNode, tmplEdge, tmplGraph} {
		if _, err := t.Parse(s); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the graph to <basepath>.dot and, when format is not
// "dot", additionally to <basepath>.<format> via graphviz. It returns the
// path of the last file written.
func (g *DotGraph) WriteFile(basepath, format string) (string, error) {
	src, err := g.Render()
	if err != nil {
		return "", err
	}
	dotpath := basepath + ".dot"
	if err := os.WriteFile(dotpath, src, 0o644); err != nil {
		return "", err
	}
	if format == "" || format == "dot" {
		return dotpath, nil
	}

	gv := graphviz.New()
	graph, err := graphviz.ParseBytes(src)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Println("closing graph:", err)
		}
		gv.Close()
	}()

	img := fmt.Sprintf("%s.%s", basepath, format)
	if err := gv.RenderFilename(graph, graphviz.Format(format), img); err != nil {
		return "", err
	}
	return img, nil
}
