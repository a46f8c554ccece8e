package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	apiclient "github.com/iudanet/shortify/internal/client/api"
	"github.com/iudanet/shortify/internal/client/storage"
	"github.com/iudanet/shortify/internal/validation"
	"github.com/iudanet/shortify/pkg/api"
)

func (c *Cli) runShorten(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shorten", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	length := fs.Int("length", 0, "short code length")
	title := fs.String("title", "", "link title")
	description := fs.String("description", "", "link description")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: shortify shorten [-length N] [-title T] <url>")
	}

	target := fs.Arg(0)
	if err := validation.ValidateURL(target); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	req := api.CreateLinkRequest{URL: target, Title: *title, Description: *description, Length: *length}

	var link *api.LinkResponse
	create := func(token string) error {
		var err error
		link, err = c.api.CreateLink(ctx, token, req)
		return err
	}

	// без сессии ссылка создается анонимно
	err := c.withSession(ctx, create)
	if errors.Is(err, errNotLoggedIn) {
		err = create("")
	}
	if err != nil {
		return err
	}

	record := &storage.LinkRecord{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    link.ShortURL,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}
	if link.CreatedBy != nil {
		record.Owner = *link.CreatedBy
	}
	if err := c.store.AddLink(ctx, record); err != nil {
		c.io.Printf("Warning: failed to save link to local history: %v\n", err)
	}

	c.io.Println(link.ShortURL)
	return nil
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	local := fs.Bool("local", false, "show links created from this client")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	if *local {
		return c.listLocal(ctx)
	}

	var links []api.LinkResponse
	err := c.withSession(ctx, func(token string) error {
		var err error
		links, err = c.api.ListMyLinks(ctx, token)
		// сервер отвечает 404, когда ссылок нет
		if apiclient.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println("=== Your Links ===")
	c.io.Println()
	for _, l := range links {
		c.io.Printf("%-36s  %-24s  %s\n", l.ID, l.ShortURL, l.OriginalURL)
	}
	c.io.Println()
	c.io.Printf("Total: %d link(s)\n", len(links))
	return nil
}

func (c *Cli) listLocal(ctx context.Context) error {
	links, err := c.store.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local history: %w", err)
	}

	c.io.Println("=== Local History ===")
	c.io.Println()
	if len(links) == 0 {
		c.io.Println("No links created yet.")
		return nil
	}
	for _, l := range links {
		owner := l.Owner
		if owner == "" {
			owner = "anonymous"
		}
		c.io.Printf("%-24s  %-10s  %s\n", l.ShortURL, owner, l.OriginalURL)
	}
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: shortify delete <id>")
	}
	id := args[0]

	err := c.withSession(ctx, func(token string) error {
		return c.api.DeleteLink(ctx, token, id)
	})
	if err != nil {
		return err
	}

	c.forget(ctx, id)
	c.io.Printf("✓ Link %s deleted\n", id)
	return nil
}

// forget убирает удаленную ссылку из локальной истории
func (c *Cli) forget(ctx context.Context, id string) {
	links, err := c.store.ListLinks(ctx)
	if err != nil {
		return
	}
	for _, l := range links {
		if l.ID == id {
			_ = c.store.RemoveLink(ctx, l.ShortCode)
			return
		}
	}
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: shortify resolve <code>")
	}

	target, err := c.api.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	c.io.Println(target)
	return nil
}
