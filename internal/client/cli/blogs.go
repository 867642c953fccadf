package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/docblog/internal/client/client"
	"github.com/dmitrijs2005/docblog/internal/server/media"
)

var errUsage = errors.New("usage")

func (a *App) List(ctx context.Context, args []string) error {
	featured := len(args) > 0 && args[0] == "featured"

	blogs, err := a.api.ListBlogs(ctx, featured)
	if err != nil {
		return err
	}
	if len(blogs) == 0 {
		fmt.Fprintln(a.out, "No blogs yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCREATED\tIMAGE")
	for _, b := range blogs {
		img := "-"
		if b.Image != nil {
			img = b.Image.Filename
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author.Name, b.CreatedAt.Format(time.DateOnly), img)
	}
	return tw.Flush()
}

func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get <id>", errUsage)
	}
	b, err := a.api.GetBlog(ctx, args[0])
	if err != nil {
		return err
	}
	printBlog(a.out, b)
	return nil
}

// Post prompts for the fields of a new blog.
func (a *App) Post(ctx context.Context) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	var in client.BlogInput
	if in.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.GoogleDriveLink, err = getSimpleText(a.reader, "Google Docs link", a.out); err != nil {
		return err
	}
	if in.ImagePath, err = getSimpleText(a.reader, "Image file (empty for none)", a.out); err != nil {
		return err
	}

	b, err := a.api.CreateBlog(ctx, tok, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", b.ID)
	return nil
}

// Update prompts for the fields to change; empty answers keep the value.
func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: update <id>", errUsage)
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	var patch client.BlogPatch
	if patch.Title, err = GetOptional(a.reader, "Title", a.out); err != nil {
		return err
	}
	if patch.GoogleDriveLink, err = GetOptional(a.reader, "Google Docs link", a.out); err != nil {
		return err
	}
	if patch.ImagePath, err = getSimpleText(a.reader, "New image file (empty to keep)", a.out); err != nil {
		return err
	}

	b, err := a.api.UpdateBlog(ctx, tok, args[0], patch)
	if err != nil {
		return err
	}
	printBlog(a.out, b)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", errUsage)
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	if err := a.api.DeleteBlog(ctx, tok, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", args[0])
	return nil
}

// Save writes the image of a blog to a local file.
func (a *App) Save(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: save <id> <file>", errUsage)
	}
	b, err := a.api.GetBlog(ctx, args[0])
	if err != nil {
		return err
	}
	if b.Image == nil {
		return fmt.Errorf("blog %s has no image", b.ID)
	}

	img, err := media.Decode(b.Image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], img.Data, 0o600); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(a.out, "Saved %s (%s, %d bytes) to %s\n", img.Filename, img.ContentType, len(img.Data), args[1])
	return nil
}

func printBlog(w io.Writer, b *client.Blog) {
	fmt.Fprintf(w, "ID:       %s\n", b.ID)
	fmt.Fprintf(w, "Title:    %s\n", b.Title)
	fmt.Fprintf(w, "Document: %s\n", b.GoogleDriveLink)
	fmt.Fprintf(w, "Author:   %s\n", b.Author.Name)
	fmt.Fprintf(w, "Featured: %t\n", b.Featured)
	fmt.Fprintf(w, "Created:  %s\n", b.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated:  %s\n", b.UpdatedAt.Format(time.RFC3339))
	if b.Image != nil {
		fmt.Fprintf(w, "Image:    %s (%s, %d base64 chars)\n", b.Image.Filename, b.Image.ContentType, len(b.Image.Data))
	}
}
