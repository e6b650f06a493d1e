// Package render turns co-occurrence graphs into DOT, JSON, ECharts options
// and standalone HTML pages, and serves an interactive explorer.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/japaniel/semnet/pkg/network"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatECharts Format = "echarts"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOT, FormatJSON, FormatHTML, FormatECharts:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: dot, json, html, echarts)", s)
	}
}

// Options controls presentation.
type Options struct {
	Title     string
	EdgeColor string
	FontColor string
	// Height of the chart in pixels.
	Height int
}

// DefaultOptions returns the explorer's default look.
func DefaultOptions() Options {
	return Options{
		Title:     "电影评论语义网络",
		EdgeColor: "#f681c6",
		FontColor: "#2c3e50",
		Height:    800,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.EdgeColor == "" {
		o.EdgeColor = d.EdgeColor
	}
	if o.FontColor == "" {
		o.FontColor = d.FontColor
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether s is a #rgb or #rrggbb color.
func ValidColor(s string) bool { return hexColor.MatchString(s) }

// Symbol sizes for ECharts nodes, scaled linearly by frequency.
const (
	minSymbolSize = 20.0
	maxSymbolSize = 60.0
)

func symbolSize(freq, maxFreq int) float64 {
	if maxFreq <= 0 {
		return maxSymbolSize
	}
	return minSymbolSize + (maxSymbolSize-minSymbolSize)*float64(freq)/float64(maxFreq)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// RenderDOT produces an undirected Graphviz representation. Node width grows
// with frequency and edge pen width equals the edge weight.
func RenderDOT(g *network.Graph, opts Options) string {
	opts = opts.withDefaults()
	maxFreq := g.MaxFrequency()

	var b strings.Builder
	b.WriteString("graph semnet {\n")
	b.WriteString(fmt.Sprintf("  label=%q;\n", opts.Title))
	b.WriteString("  overlap=false;\n")
	b.WriteString(fmt.Sprintf("  node [shape=ellipse, fontname=\"Helvetica\", fontcolor=%q];\n", opts.FontColor))
	b.WriteString(fmt.Sprintf("  edge [color=%q];\n\n", opts.EdgeColor))

	for _, n := range g.Nodes {
		width := 0.75
		if maxFreq > 0 {
			width += 1.25 * float64(n.Frequency) / float64(maxFreq)
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, width=%.2f, tooltip=\"frequency=%d\"];\n",
			n.Token, n.Token, width, n.Frequency))
	}
	if len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		w := formatWeight(e.Weight)
		b.WriteString(fmt.Sprintf("  %q -- %q [penwidth=%s, weight=%s];\n", e.Source, e.Target, w, w))
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON graph representation with nodes and edges arrays.
func RenderJSON(g *network.Graph) map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, map[string]interface{}{
			"name":      n.Token,
			"frequency": n.Frequency,
		})
	}
	edges := make([]map[string]interface{}, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, map[string]interface{}{
			"source": e.Source,
			"target": e.Target,
			"weight": e.Weight,
		})
	}
	return map[string]interface{}{
		"nodes":      nodes,
		"edges":      edges,
		"node_count": len(nodes),
		"edge_count": len(edges),
		"stats":      g.Stats,
	}
}

// EChartsOption builds a force-layout ECharts option for g.
func EChartsOption(g *network.Graph, opts Options) map[string]interface{} {
	opts = opts.withDefaults()
	maxFreq := g.MaxFrequency()

	nodes := make([]map[string]interface{}, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, map[string]interface{}{
			"name":       n.Token,
			"value":      n.Frequency,
			"symbolSize": symbolSize(n.Frequency, maxFreq),
		})
	}
	links := make([]map[string]interface{}, 0, len(g.Edges))
	for _, e := range g.Edges {
		links = append(links, map[string]interface{}{
			"source": e.Source,
			"target": e.Target,
			"value":  e.Weight,
			"lineStyle": map[string]interface{}{
				"color": opts.EdgeColor,
				"width": e.Weight,
			},
		})
	}

	return map[string]interface{}{
		"title":                   map[string]interface{}{"text": opts.Title},
		"tooltip":                 map[string]interface{}{},
		"animationDurationUpdate": 1500,
		"animationEasingUpdate":   "quinticInOut",
		"series": []map[string]interface{}{{
			"type":   "graph",
			"layout": "force",
			"data":   nodes,
			"links":  links,
			"roam":   true,
			"label": map[string]interface{}{
				"show":     true,
				"position": "right",
				"color":    opts.FontColor,
				"fontSize": 16,
			},
			"force": map[string]interface{}{
				"repulsion":  1000,
				"edgeLength": 200,
			},
			"lineStyle": map[string]interface{}{
				"opacity": 0.5,
				"width":   2,
			},
		}},
	}
}

// formData fills the parameter form of the interactive page.
type formData struct {
	MinWeight  string
	TopN       int
	Multiplier string
	Policy     string
	EdgeColor  string
	FontColor  string
	Item       string
	Items      []string
	Error      string
}

// htmlTemplateData holds data passed to the HTML template.
// OptionJSON is pre-sanitized JSON (via json.HTMLEscape) safe for inline <script>.
type htmlTemplateData struct {
	Title      string
	Height     int
	OptionJSON template.JS
	Nodes      int
	Edges      int
	Stats      network.Stats
	Form       *formData
}

// RenderHTML produces a self-contained page that draws g with ECharts and
// lists the network statistics.
func RenderHTML(g *network.Graph, opts Options) ([]byte, error) {
	return renderPage(g, opts, nil)
}

func renderPage(g *network.Graph, opts Options, form *formData) ([]byte, error) {
	opts = opts.withDefaults()

	optionJSON, err := json.Marshal(EChartsOption(g, opts))
	if err != nil {
		return nil, fmt.Errorf("marshal chart option: %w", err)
	}

	tmplBytes, err := templates.ReadFile("templates/graph.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}
	tmpl, err := template.New("graph").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	// json.HTMLEscape converts <, >, & to unicode escapes so comment text
	// cannot close the inline <script>.
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, optionJSON)

	var buf bytes.Buffer
	data := htmlTemplateData{
		Title:      opts.Title,
		Height:     opts.Height,
		OptionJSON: template.JS(escaped.String()), // #nosec G203
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		Stats:      g.Stats,
		Form:       form,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
