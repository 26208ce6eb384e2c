package cli

import (
	"context"
	"fmt"
	"strings"

	"agentic/internal/api"
)

// UploadDocuments sends one or more knowledge files to an agent in a single
// batched request.
func UploadDocuments(ctx context.Context, app *App, agentRef string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}

	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	var files []api.DocumentFile
	var closers []func() error
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	for _, path := range paths {
		file, closeFn, err := api.OpenDocumentFile(path)
		if err != nil {
			return err
		}
		closers = append(closers, closeFn)
		files = append(files, file)
	}

	if err := app.Client.UploadDocuments(ctx, agent.ID, files); err != nil {
		return err
	}
	fmt.Printf("Uploaded %d file(s) to %q\n", len(files), agent.Name)
	return nil
}

// DeleteDocument removes a knowledge file from an agent by filename or id.
func DeleteDocument(ctx context.Context, app *App, agentRef, docRef string) error {
	agent, err := app.ResolveAgent(ctx, agentRef)
	if err != nil {
		return err
	}

	for _, doc := range agent.Documents {
		if doc.ID == docRef || strings.EqualFold(doc.Filename, docRef) {
			if err := app.Client.DeleteDocument(ctx, doc.ID); err != nil {
				return err
			}
			fmt.Printf("Removed document %q\n", doc.Filename)
			return nil
		}
	}
	return fmt.Errorf("agent %q has no document %q", agent.Name, docRef)
}
