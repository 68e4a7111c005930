// Command blockctl works with post content offline: it extracts product
// blocks, renders articles with the built-in catalog and mints tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ternarybob/arbor"

	"blockpress/auth"
	"blockpress/blocks"
	"blockpress/compositor"
	"blockpress/config"
	"blockpress/globals"
	"blockpress/logging"
	"blockpress/models"
	"blockpress/posts"
	"blockpress/products"
	"blockpress/render"
)

// App carries what every command writes to.
type App struct {
	Out    io.Writer
	Logger arbor.ILogger
}

type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Print the product blocks found in a post as JSON"`
	Render  RenderCmd  `cmd:"" help:"Render a post to an HTML page using the built-in catalog"`
	Snippet SnippetCmd `cmd:"" help:"Print the plain-text snippet of a post"`
	Token   TokenCmd   `cmd:"" help:"Mint an access token for scripting"`
}

type ExtractCmd struct {
	File string `arg:"" type:"existingfile" help:"Markdown file to scan"`
}

func (c *ExtractCmd) Run(app *App) error {
	content, err := readContent(c.File)
	if err != nil {
		return err
	}
	tags := blocks.Extract(content)
	if tags == nil {
		tags = []models.BlockTag{}
	}
	return writeJSON(app.Out, tags)
}

type RenderCmd struct {
	File  string `arg:"" type:"existingfile" help:"Markdown file to render"`
	JSON  bool   `name:"json" help:"Print the composited segments as JSON instead of HTML"`
	Title string `name:"title" short:"t" help:"Page title (default: file name)"`
}

func (c *RenderCmd) Run(app *App) error {
	content, err := readContent(c.File)
	if err != nil {
		return err
	}

	segments := compositor.New().Composite(content, blocks.Extract(content))
	if c.JSON {
		return writeJSON(app.Out, segments)
	}

	renderer := render.New(products.NewStaticCatalog(), app.Logger)
	body, err := renderer.Render(context.Background(), segments)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", c.File, err)
	}

	title := c.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File))
	}
	page, err := render.Page(title, blocks.Snippet(content, posts.ViewSnippetLength), body)
	if err != nil {
		return err
	}
	_, err = io.WriteString(app.Out, page)
	return err
}

type SnippetCmd struct {
	File string `arg:"" type:"existingfile" help:"Markdown file to summarise"`
	Max  int    `name:"max" short:"m" default:"200" help:"Maximum snippet length in characters"`
}

func (c *SnippetCmd) Run(app *App) error {
	content, err := readContent(c.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, blocks.Snippet(content, c.Max))
	return err
}

type TokenCmd struct {
	User     string `name:"user" required:"" help:"User ID to put in the token"`
	Username string `name:"username" required:"" help:"Username to put in the token"`
	Config   string `name:"config" short:"c" type:"path" help:"Config file holding auth.jwt_secret"`
}

func (c *TokenCmd) Run(app *App) error {
	var paths []string
	if c.Config != "" {
		paths = append(paths, c.Config)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret != "" {
		globals.JwtSecret = []byte(cfg.Auth.JWTSecret)
	} else {
		app.Logger.Warn().Msg("auth.jwt_secret not set, signing with the development secret")
	}

	token, expires, err := auth.IssueToken(c.User, c.Username, cfg.Auth.TTL())
	if err != nil {
		return err
	}
	app.Logger.Debug().Str("user", c.User).Str("expires", expires.Format("2006-01-02T15:04:05Z07:00")).Msg("Token issued")
	_, err = fmt.Fprintln(app.Out, token)
	return err
}

func readContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blockctl"),
		kong.Description("Inspect and render blockpress post content"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&App{Out: os.Stdout, Logger: logging.Get()})
	ctx.FatalIfErrorf(err)
}
