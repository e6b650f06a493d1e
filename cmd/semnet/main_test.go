package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japaniel/semnet/pkg/network"
	"github.com/japaniel/semnet/pkg/render"
	"github.com/spf13/cobra"
)

const testCSV = `film,content
宠物,猫 喜欢 鱼
宠物,猫 喜欢 狗
宠物,鱼 喜欢 水
天气,晴天 下雨
`

// setupWorkspace writes a whitespace-tokenizer config and the test corpus
// into a temp dir and returns the config and corpus paths.
func setupWorkspace(t *testing.T) (cfgPath, csvPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "semnet.yaml")
	cfg := "tokenizer:\n  language: whitespace\n  min_length: 1\ndatabase:\n  path: " + filepath.Join(dir, "semnet.db") + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath = filepath.Join(dir, "reviews.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, csvPath
}

// runCmd executes the root command in-process and returns stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"build", "import", "items", "serve", "stopwords", "tokens", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "semnet ") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTokensCmd(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)

	out, err := runCmd(t, "", "--config", cfgPath, "tokens", "猫 喜欢 的 鱼！")
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "猫 喜欢 鱼" {
		t.Errorf("tokens = %q, want %q", got, "猫 喜欢 鱼")
	}

	out, err = runCmd(t, "猫 喜欢 鱼\n晴天\n", "--config", cfgPath, "tokens")
	if err != nil {
		t.Fatalf("tokens from stdin failed: %v", err)
	}
	if out != "猫 喜欢 鱼\n晴天\n" {
		t.Errorf("stdin tokens = %q", out)
	}
}

func TestTokensMinLengthFlag(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	out, err := runCmd(t, "", "--config", cfgPath, "tokens", "--min-length", "2", "猫 喜欢 鱼")
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "喜欢" {
		t.Errorf("tokens = %q, want 喜欢", got)
	}
}

func decodeGraph(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return doc
}

func TestBuildJSON(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)

	tests := []struct {
		name      string
		args      []string
		wantNodes float64
		wantEdges float64
	}{
		{"whole corpus", nil, 7, 2},
		{"one item", []string{"--item-column", "film", "--item", "宠物"}, 5, 2},
		{"top n", []string{"--top-n", "2"}, 2, 1},
		{"low min weight", []string{"--item-column", "film", "--item", "宠物", "--min-weight", "1"}, 5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfgPath, "build", "-i", csvPath, "--format", "json", "--workers", "2"}, tt.args...)
			out, err := runCmd(t, "", args...)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			doc := decodeGraph(t, out)
			if doc["node_count"] != tt.wantNodes {
				t.Errorf("node_count = %v, want %v", doc["node_count"], tt.wantNodes)
			}
			if doc["edge_count"] != tt.wantEdges {
				t.Errorf("edge_count = %v, want %v", doc["edge_count"], tt.wantEdges)
			}
		})
	}
}

func TestBuildDOTToFile(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)
	outPath := filepath.Join(t.TempDir(), "graph.dot")

	if _, err := runCmd(t, "", "--config", cfgPath, "build", "-i", csvPath, "-f", "dot", "-o", outPath); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "graph semnet {") {
		t.Errorf("unexpected DOT output:\n%s", data)
	}
	if !strings.Contains(string(data), `"喜欢" -- "猫"`) {
		t.Errorf("DOT output missing 喜欢-猫 edge:\n%s", data)
	}
}

func TestBuildHTMLNoOpen(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)
	outPath := filepath.Join(t.TempDir(), "graph.html")

	out, err := runCmd(t, "", "--config", cfgPath, "build", "-i", csvPath, "--item-column", "film", "--item", "宠物", "-o", outPath, "--no-open")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(out, "Graph written to") {
		t.Errorf("missing confirmation, got %q", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "echarts", "节点数量: 5"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"unknown item", []string{"-i", csvPath, "--item-column", "film", "--item", "音乐"}, render.ErrUnknownItem, ""},
		{"negative min weight", []string{"-i", csvPath, "--min-weight=-1"}, network.ErrInvalidParameter, ""},
		{"zero top n", []string{"-i", csvPath, "--top-n", "0"}, network.ErrInvalidParameter, ""},
		{"bad policy", []string{"-i", csvPath, "--policy", "everything"}, nil, "policy"},
		{"bad format", []string{"-i", csvPath, "--format", "svg"}, nil, "format"},
		{"missing column", []string{"-i", csvPath, "--column", "text"}, nil, "text"},
		{"missing file", []string{"-i", filepath.Join(t.TempDir(), "nope.csv")}, nil, "nope.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfgPath, "build", "--format", "json"}, tt.args...)
			_, err := runCmd(t, "", args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestImportItemsAndBuildFromDB(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)

	out, err := runCmd(t, "", "--config", cfgPath, "import", "-i", csvPath, "--item-column", "film")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Inserted 4 comments (0 duplicates, 0 empty) across 2 items") {
		t.Errorf("unexpected import summary: %q", out)
	}

	// A second import stores nothing new.
	out, err = runCmd(t, "", "--config", cfgPath, "import", "-i", csvPath, "--item-column", "film")
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if !strings.Contains(out, "Inserted 0 comments (4 duplicates") {
		t.Errorf("unexpected re-import summary: %q", out)
	}

	out, err = runCmd(t, "", "--config", cfgPath, "items")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if !strings.Contains(out, "宠物") || !strings.Contains(out, "天气") {
		t.Errorf("items output missing titles:\n%s", out)
	}

	out, err = runCmd(t, "", "--config", cfgPath, "build", "--format", "json", "--item", "宠物")
	if err != nil {
		t.Fatalf("build from db failed: %v", err)
	}
	doc := decodeGraph(t, out)
	if doc["node_count"] != float64(5) || doc["edge_count"] != float64(2) {
		t.Errorf("graph from db = %v nodes, %v edges; want 5, 2", doc["node_count"], doc["edge_count"])
	}

	_, err = runCmd(t, "", "--config", cfgPath, "build", "--format", "json", "--item", "音乐")
	if !errors.Is(err, render.ErrUnknownItem) {
		t.Errorf("unknown db item error = %v, want ErrUnknownItem", err)
	}
}

func TestImportRequiresInput(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	if _, err := runCmd(t, "", "--config", cfgPath, "import"); err == nil {
		t.Fatal("expected error without --input")
	}
}

func TestImportWithoutItemFails(t *testing.T) {
	cfgPath, csvPath := setupWorkspace(t)
	if _, err := runCmd(t, "", "--config", cfgPath, "import", "-i", csvPath); err == nil {
		t.Fatal("expected error for records without an item")
	}
}

func TestItemsEmptyDB(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	out, err := runCmd(t, "", "--config", cfgPath, "items")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if strings.TrimSpace(out) != "No items." {
		t.Errorf("items = %q", out)
	}
}

func TestStopwordsList(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	out, err := runCmd(t, "", "--config", cfgPath, "stopwords", "list")
	if err != nil {
		t.Fatalf("stopwords list failed: %v", err)
	}
	if !strings.Contains(out, "的\n") {
		t.Errorf("default stopwords missing 的:\n%s", out)
	}
}

func TestStopwordsFetchUsesExistingFile(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	path := filepath.Join(t.TempDir(), "stop.txt")
	if err := os.WriteFile(path, []byte("很\n非常\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "", "--config", cfgPath, "stopwords", "fetch", "--file", path)
	if err != nil {
		t.Fatalf("stopwords fetch failed: %v", err)
	}
	if !strings.Contains(out, "2 stopwords") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("tokenizer:\n  language: klingon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "", "--config", cfgPath, "tokens", "x"); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestWorkersDefaultSequential(t *testing.T) {
	for _, cmd := range []*cobra.Command{newBuildCmd(), newServeCmd()} {
		f := cmd.Flags().Lookup("workers")
		if f == nil {
			t.Fatalf("%s has no --workers flag", cmd.Name())
		}
		if f.DefValue != "1" {
			t.Errorf("%s --workers default = %s, want 1", cmd.Name(), f.DefValue)
		}
	}
}
