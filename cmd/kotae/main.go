// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/gateway"
	"github.com/hyperjump/kotae/internal/history"
	"github.com/hyperjump/kotae/internal/index"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/loader"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rag"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, reloads, cache hits)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	metrics.RegisterPipelineMetrics()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchEnabled := cfg.KnowledgeBase.WatchOrDefault()
	if err := reloadKnowledgeBase(components.Engine, cfg, logger); err != nil {
		if !watchEnabled {
			logger.Fatal("Failed to load knowledge base", zap.Error(err))
		}
		// The server starts unready and picks the file up once it appears.
		logger.Warn("knowledge base not loaded yet",
			zap.String("path", cfg.KnowledgeBase.Path),
			zap.Error(err))
	}

	if watchEnabled {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watch := watcher.New(cfg.KnowledgeBase.Path, func() {
			if err := reloadKnowledgeBase(components.Engine, cfg, logger); err != nil {
				logger.Warn("knowledge base reload failed", zap.Error(err))
			}
		}, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(components.Engine, components.History, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces, so quoting is optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae ask how do I run kafka with java
  kotae ask "how do I run kafka with java"          # same as above
  kotae ask --group de-zoomcamp "is it too late to join?"
  kotae ask --limit 3 --model gpt-4o-mini --output json "docker compose fails"
`)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "The query is all remaining arguments joined by spaces, so quoting is optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae search docker compose
  kotae search "docker compose"                     # same as above
  kotae search --group de-zoomcamp --limit 10 postgres
  kotae search --output json "connection refused"   # structured JSON for other apps
`)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting (e.g. "kafka setup" vs kafka setup).
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "kotae search \"query\" -limit 10"
// would otherwise leave -limit unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseOutputFormat maps an -output flag value onto a render format.
func parseOutputFormat(s string) (cli.OutputFormat, bool) {
	switch s {
	case "text":
		return cli.OutputText, true
	case "json":
		return cli.OutputJSON, true
	default:
		return "", false
	}
}

func runAsk() {
	askArgs := reorderArgs(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the pipeline in-process when the server is not running)")
	limit := fs.Int("limit", 0, "number of context documents (0 = config default)")
	model := fs.String("model", "", "chat model (empty = config default)")
	group := fs.String("group", "", "restrict retrieval to one knowledge-base group")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := buildQuery(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	req := models.AskRequest{
		Question: question,
		Limit:    *limit,
		Model:    *model,
	}
	if *group != "" {
		req.Filters = map[string]string{models.FieldGroup: *group}
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (shares its index, cache, and history).
		response, err := askViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAskResponse(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// In-process pipeline (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	if err := reloadKnowledgeBase(components.Engine, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load knowledge base: %v\n", err)
		os.Exit(1)
	}

	response, err := components.Engine.Ask(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAskResponse(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, req models.AskRequest) (*models.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSearch() {
	searchArgs := reorderArgs(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = search in-process when the server is not running)")
	limit := fs.Int("limit", 0, "number of results (0 = config default)")
	group := fs.String("group", "", "restrict results to one knowledge-base group")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	query := models.SearchQuery{
		Query: queryStr,
		Limit: *limit,
	}
	if *group != "" {
		query.Filters = map[string]string{models.FieldGroup: *group}
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (shares its index).
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// In-process search (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	if err := reloadKnowledgeBase(components.Engine, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load knowledge base: %v\n", err)
		os.Exit(1)
	}

	response, err := components.Engine.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "", "knowledge-base file to write (empty = the config's knowledge_base path)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ingest [flags] <file-or-directory>...")
		fmt.Println("Supported formats: .txt, .md, .pdf, .docx, .xlsx")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	outPath := *output
	if outPath == "" {
		outPath = cfg.KnowledgeBase.Path
	}

	ingOpts := []ingest.Option{}
	if cfg.Debug {
		ingOpts = append(ingOpts, ingest.WithLogger(logger))
	}
	ing := ingest.New(ingOpts...)

	var groups []models.Group
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Printf("Failed to stat path: %v\n", err)
			os.Exit(1)
		}
		var gs []models.Group
		if info.IsDir() {
			gs, err = ing.Dir(path)
		} else {
			gs, err = ing.File(path)
		}
		if err != nil {
			fmt.Printf("Ingest failed: %v\n", err)
			os.Exit(1)
		}
		groups = append(groups, gs...)
	}

	if err := ingest.WriteKnowledgeBase(outPath, groups); err != nil {
		fmt.Printf("Failed to write knowledge base: %v\n", err)
		os.Exit(1)
	}
	docs := 0
	for _, g := range groups {
		docs += len(g.Documents)
	}
	fmt.Printf("Wrote %d group(s), %d document(s) to %s\n", len(groups), docs, outPath)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	Model         string `json:"model"`
	DefaultLimit  int    `json:"default_limit"`
	KnowledgeBase string `json:"knowledge_base"`
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Ready          bool                  `json:"ready"`
	Documents      int                   `json:"documents"`
	Index          index.Schema          `json:"index"`
	Config         *statusConfigResponse `json:"config,omitempty"`
	HistoryRecords *int64                `json:"history_records,omitempty"`
	Gateway        string                `json:"gateway,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = inspect the pipeline in-process)")
	checkGateway := fs.Bool("check-gateway", false, "verify the chat API is reachable (in-process mode only)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		if err := reloadKnowledgeBase(components.Engine, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load knowledge base: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Ready:     components.Engine.Ready(),
			Documents: components.Engine.DocCount(),
			Index:     components.Engine.Schema(),
			Config: &statusConfigResponse{
				Model:         cfg.Gateway.Model,
				DefaultLimit:  cfg.Search.DefaultLimit,
				KnowledgeBase: cfg.KnowledgeBase.Path,
			},
		}
		if components.History != nil {
			if count, err := components.History.Count(context.Background()); err == nil {
				status.HistoryRecords = &count
			}
		}
		if *checkGateway {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := components.Gateway.HealthCheck(ctx); err != nil {
				status.Gateway = fmt.Sprintf("error: %v", err)
			} else {
				status.Gateway = "ok"
			}
			cancel()
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("ready:           %t\n", status.Ready)
		fmt.Printf("documents:       %d   # documents in the active index\n", status.Documents)
		if status.HistoryRecords != nil {
			fmt.Printf("history_records: %d\n", *status.HistoryRecords)
		}
		fmt.Printf("text_fields:     %s\n", strings.Join(status.Index.TextFields, ", "))
		fmt.Printf("keyword_fields:  %s\n", strings.Join(status.Index.KeywordFields, ", "))
		if status.Gateway != "" {
			fmt.Printf("gateway:         %s\n", status.Gateway)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("model:           %s\n", status.Config.Model)
			fmt.Printf("default_limit:   %d\n", status.Config.DefaultLimit)
			fmt.Printf("knowledge_base:  %s\n", status.Config.KnowledgeBase)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds the initialized pipeline services.
type Components struct {
	Engine  *rag.Engine
	Gateway *gateway.OpenAIGateway
	History *history.Store
}

func (c *Components) Close() {
	if c.Engine != nil {
		_ = c.Engine.Close()
	}
	if c.History != nil {
		_ = c.History.Close()
	}
}

// initializeComponents wires the gateway, history store, answer cache, and
// engine. The engine starts without an index; reloadKnowledgeBase loads one.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	gw := gateway.New(&gateway.Config{
		APIKey:  cfg.Gateway.APIKey,
		BaseURL: cfg.Gateway.BaseURL,
		Model:   cfg.Gateway.Model,
		Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})

	var store *history.Store
	engineOpts := []rag.Option{rag.WithLogger(logger)}
	if cfg.History.EnabledOrDefault() {
		var err error
		store, err = history.New(cfg.History.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		engineOpts = append(engineOpts, rag.WithHistory(store))
	}
	if cfg.Cache.EnabledOrDefault() {
		engineOpts = append(engineOpts, rag.WithAnswerCache(time.Duration(cfg.Cache.TTLMinutes)*time.Minute))
	}

	engine := rag.NewEngine(nil, gw, &cfg.Search, engineOpts...)
	return &Components{Engine: engine, Gateway: gw, History: store}, nil
}

// schemaFromConfig builds the index schema declared in the config.
func schemaFromConfig(cfg *config.Config) index.Schema {
	return index.Schema{
		TextFields:    cfg.Index.TextFields,
		KeywordFields: cfg.Index.KeywordFields,
	}
}

// reloadKnowledgeBase reads the knowledge-base file, builds a fresh index
// under the configured schema, and swaps it into the engine.
func reloadKnowledgeBase(engine *rag.Engine, cfg *config.Config, logger *zap.Logger) error {
	docs, err := loader.Load(cfg.KnowledgeBase.Path)
	if err != nil {
		return err
	}
	idx, err := index.Build(schemaFromConfig(cfg), docs)
	if err != nil {
		return err
	}
	engine.SwapIndex(idx)
	logger.Info("knowledge base loaded",
		zap.String("path", cfg.KnowledgeBase.Path),
		zap.Int("documents", len(docs)))
	return nil
}

func printUsage() {
	fmt.Println(`kotae - Retrieval-augmented FAQ assistant

Usage:
  kotae server [flags]            Start the HTTP server
  kotae ask [flags] <question>    Ask a question over the knowledge base
  kotae search [flags] <query>    Search the knowledge base
  kotae ingest [flags] <path>...  Convert source documents into the knowledge base
  kotae status [flags]            Show index and pipeline status
  kotae version                   Show version
  kotae help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging (requests, reloads, cache hits)

Ask Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to run the pipeline in-process.
  --limit int        Number of context documents (0 = config default)
  --model string     Chat model (empty = config default)
  --group string     Restrict retrieval to one knowledge-base group
  --output string    Output format: text or json (default: text)

Search Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to search in-process.
  --limit int        Number of results (0 = config default)
  --group string     Restrict results to one knowledge-base group
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --output string    Knowledge-base file to write (default: the config's knowledge_base path)

Status Flags:
  --config string    Config file path (for in-process mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to inspect in-process.
  --check-gateway    Verify the chat API is reachable (in-process mode only)
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae ask "how do I run kafka with java"
  kotae ask --group de-zoomcamp "is it too late to join?"
  kotae search --limit 10 docker compose
  kotae search --output json "connection refused"
  kotae ingest docs/course-faq.docx
  kotae ingest --output data/knowledge_base.json docs/
  kotae status
  kotae status --output json`)
}
