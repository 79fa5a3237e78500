package cli

import (
	"context"
	"fmt"

	"github.com/restkeep/restkeep/internal/models"
)

// docTypeAliases — имена типов в командной строке
var docTypeAliases = map[string]string{
	"workspace":   models.TypeWorkspace,
	"folder":      models.TypeRequestGroup,
	"request":     models.TypeRequest,
	"environment": models.TypeEnvironment,
	"jar":         models.TypeCookieJar,
}

func (c *Cli) RunAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <type> <name> [parent-id]")
	}

	docType, ok := docTypeAliases[args[0]]
	if !ok {
		return fmt.Errorf("unknown document type %q (expected workspace, folder, request, environment or jar)", args[0])
	}

	doc := &models.Document{
		Type:    docType,
		Payload: map[string]any{"name": args[1]},
	}
	if len(args) > 2 {
		doc.ParentID = args[2]
	}

	created, err := c.docs.Insert(ctx, doc, false)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Created %s %s\n", args[0], created.ID)
	return nil
}

func (c *Cli) RunList(ctx context.Context) error {
	workspaces, err := c.docs.Find(ctx, models.TypeWorkspace, nil)
	if err != nil {
		return err
	}
	if len(workspaces) == 0 {
		c.io.Println("No workspaces yet. Create one with 'restkeep add workspace <name>'.")
		return nil
	}

	for _, wrk := range workspaces {
		docs, err := c.docs.WithDescendants(ctx, wrk)
		if err != nil {
			return err
		}

		children := make(map[string][]*models.Document)
		for _, doc := range docs {
			if doc.ID != wrk.ID {
				children[doc.ParentID] = append(children[doc.ParentID], doc)
			}
		}
		c.printTree(wrk, children, 0)
	}
	return nil
}

func (c *Cli) printTree(doc *models.Document, children map[string][]*models.Document, depth int) {
	name, _ := doc.Payload["name"].(string)
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	c.io.Printf("%s%s  (%s, %s)\n", indent, name, doc.Type, doc.ID)
	for _, child := range children[doc.ID] {
		c.printTree(child, children, depth+1)
	}
}

func (c *Cli) RunDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete <id>")
	}

	doc, err := c.findDoc(ctx, args[0])
	if err != nil {
		return err
	}

	// Считаем потомков до удаления, чтобы отчитаться
	docs, err := c.docs.WithDescendants(ctx, doc)
	if err != nil {
		return err
	}

	if err := c.docs.RemoveCascading(ctx, doc, false); err != nil {
		return err
	}

	c.io.Printf("✓ Deleted %d document(s)\n", len(docs))
	return nil
}
