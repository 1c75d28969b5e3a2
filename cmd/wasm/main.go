//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/kotomap/pkg/loader"
	"github.com/kittclouds/kotomap/pkg/session"
	"github.com/kittclouds/kotomap/pkg/tokenize"
	"github.com/kittclouds/kotomap/pkg/vector"
)

// Version info
const Version = "0.1.0"

// Page-scoped state. The session owns all loaded tables; the neighbor
// index is optional and built on demand.
var sess *session.Session
var neighborIndex *vector.Index

func main() {
	println("[kotomap] WASM Ready v" + Version)

	js.Global().Set("Kotomap", js.ValueOf(map[string]interface{}{
		"version":       js.FuncOf(getVersion),
		"initialize":    js.FuncOf(initialize),
		"ensureAssets":  js.FuncOf(ensureAssets),
		"run":           js.FuncOf(run),
		"selectWord":    js.FuncOf(selectWord),
		"similar":       js.FuncOf(similar),
		"status":        js.FuncOf(status),
		"ensureVectors": js.FuncOf(ensureVectors),
		// Whole-vocabulary neighbor index (IndexedDB-backed)
		"initNeighbors": js.FuncOf(initNeighbors),
		"nearest":       js.FuncOf(nearest),
		"saveNeighbors": js.FuncOf(saveNeighbors),
	}))

	select {}
}

// initialize creates the session against an asset base URL.
// Args: [baseURL string, optional dim int]
// Nothing is fetched here; assets load on first use.
func initialize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1+ args: baseURL, [dim]")
	}

	cfg := session.Config{
		Source: loader.HTTPSource{BaseURL: args[0].String()},
	}
	if len(args) > 1 {
		cfg.Dim = args[1].Int()
	}

	sess = session.New(cfg)
	neighborIndex = nil
	return successResult("initialized")
}

// ensureAssets warms the run-path resources (vocabulary, coordinates,
// tokenizer) so the first run doesn't pay the fetch/build cost.
func ensureAssets(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if err := sess.EnsureAssets(context.Background()); err != nil {
		println("[kotomap] ensureAssets failed:", err.Error())
		return errorResult(err.Error())
	}
	return successResult("assets ready")
}

// run tokenizes text and returns the plot as a JSON array of
// {word, x, y}. Args: [text string, optsJSON string]
func run(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1+ args: text, [optsJSON]")
	}

	var opts tokenize.Options
	if len(args) > 1 && args[1].String() != "" {
		if err := json.Unmarshal([]byte(args[1].String()), &opts); err != nil {
			return errorResult("invalid options json: " + err.Error())
		}
	}

	points, err := sess.Run(context.Background(), args[0].String(), opts)
	if err != nil {
		println("[kotomap] run failed:", err.Error())
		return errorResult(err.Error())
	}

	jsonBytes, _ := json.Marshal(points)
	return string(jsonBytes)
}

// selectWord ranks the plotted set against the point at index (as
// returned by the last run). Args: [index int]
// Returns: {"word": ..., "neighbors": [{word, score}, ...]}
func selectWord(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: index")
	}

	word, neighbors, err := sess.Select(context.Background(), args[0].Int())
	if err != nil {
		println("[kotomap] select failed:", err.Error())
		return errorResult(err.Error())
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"word":      word,
		"neighbors": neighbors,
	})
	return string(jsonBytes)
}

// similar ranks the plotted set against a plotted word by name.
// Args: [word string]
func similar(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if len(args) < 1 {
		return errorResult("requires 1 arg: word")
	}

	neighbors, err := sess.SimilarTo(context.Background(), args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}

	jsonBytes, _ := json.Marshal(neighbors)
	return string(jsonBytes)
}

// ensureVectors preloads vocabulary + embedding table ahead of the first
// selection, for pages that want to warm the cache early.
func ensureVectors(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if err := sess.EnsureEmbeddings(context.Background()); err != nil {
		return errorResult(err.Error())
	}
	return successResult("embeddings ready")
}

// status reports per-resource readiness for the page's status line.
func status(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	jsonBytes, _ := json.Marshal(sess.Status())
	return string(jsonBytes)
}

// initNeighbors opens the IndexedDB-backed whole-vocabulary neighbor
// index, building it from the embedding table when no persisted graph
// exists. Args: [] (uses the "kotomap" DB and "neighbors.bin" path)
func initNeighbors(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("not initialized")
	}
	if err := sess.EnsureEmbeddings(context.Background()); err != nil {
		return errorResult(err.Error())
	}

	fs, err := indexeddb.NewFS(context.Background(), "kotomap", indexeddb.Options{})
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}

	idx, err := vector.NewIndex(fs, "neighbors.bin")
	if err != nil {
		return errorResult("failed to open neighbor index: " + err.Error())
	}

	if idx.Graph.Size() == 0 {
		if err := idx.Build(sess.Engine().Table()); err != nil {
			return errorResult("failed to build neighbor index: " + err.Error())
		}
		println("[kotomap] neighbor index built:", idx.Graph.Size(), "vectors")
	}

	neighborIndex = idx
	return successResult("neighbor index ready")
}

// nearest returns up to k vocabulary words closest to a word, searched
// over the whole vocabulary. Args: [word string, k int]
func nearest(this js.Value, args []js.Value) interface{} {
	if neighborIndex == nil {
		return errorResult("neighbor index not initialized")
	}
	if len(args) < 2 {
		return errorResult("requires 2 args: word, k")
	}

	words, err := neighborIndex.NeighborWords(
		args[0].String(), sess.Vocabulary(), sess.Engine().Table(), args[1].Int())
	if err != nil {
		return errorResult(err.Error())
	}

	jsonBytes, _ := json.Marshal(words)
	return string(jsonBytes)
}

// saveNeighbors persists the neighbor index to IndexedDB.
func saveNeighbors(this js.Value, args []js.Value) interface{} {
	if neighborIndex == nil {
		return errorResult("neighbor index not initialized")
	}
	if err := neighborIndex.Save(); err != nil {
		return errorResult("save failed: " + err.Error())
	}
	return successResult("saved")
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
