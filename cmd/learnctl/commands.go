package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yukikurage/learnflow-api/internal/app"
	"github.com/yukikurage/learnflow-api/internal/client"
	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/repository"
	"github.com/yukikurage/learnflow-api/internal/services"
	"gorm.io/gorm"
)

// open connects to the configured database and migrates it.
func open(ctx *Context) (*gorm.DB, func(), error) {
	if err := database.Connect(ctx.Config); err != nil {
		return nil, nil, err
	}
	db := database.GetDB()
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return db, func() { sqlDB.Close() }, nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	_, closeDB, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	fmt.Println("Migrations applied.")
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(ctx *Context) error {
	db, closeDB, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	created, err := app.Seed(app.NewServices(db, ctx.Config, nil, nil))
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("Demo account %s already exists.\n", app.DemoEmail)
		return nil
	}
	fmt.Printf("Created demo account %s (password %s).\n", app.DemoEmail, app.DemoPassword)
	return nil
}

type ReportCmd struct {
	Email  string `arg:"" help:"Email address of the user."`
	Period string `help:"Reporting window (week, month, quarter, year, all)." default:"month"`
	Type   string `help:"Report sections (comprehensive, goals, progress, resources, analytics)." default:"comprehensive"`
	Format string `help:"Output format (json, csv, html)." default:"json"`
	Output string `short:"o" help:"Directory to write the file to." default:"." type:"existingdir"`
}

func (c *ReportCmd) Run(ctx *Context) error {
	return writeDocument(ctx, c.Email, c.Output, func(s *app.Services, userID uint64) (*services.Document, error) {
		return s.Reports.Generate(services.ReportInput{UserID: userID, Period: c.Period, Type: c.Type, Format: c.Format})
	})
}

type ExportCmd struct {
	Email  string `arg:"" help:"Email address of the user."`
	Type   string `help:"Collection to export (all, goals, resources, progress)." default:"all"`
	Format string `help:"Output format (json, csv)." default:"json"`
	Output string `short:"o" help:"Directory to write the file to." default:"." type:"existingdir"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	return writeDocument(ctx, c.Email, c.Output, func(s *app.Services, userID uint64) (*services.Document, error) {
		return s.Reports.Export(services.ExportInput{UserID: userID, Type: c.Type, Format: c.Format})
	})
}

func writeDocument(ctx *Context, email, dir string, build func(*app.Services, uint64) (*services.Document, error)) error {
	db, closeDB, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := repository.NewUserRepository(db).FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	doc, err := build(app.NewServices(db, ctx.Config, nil, nil), user.ID)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, doc.FileName)
	if err := os.WriteFile(path, doc.Body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes).\n", path, len(doc.Body))
	return nil
}

type RemoteSummaryCmd struct {
	URL      string        `help:"Base URL of the API." default:"http://localhost:8080/api/v1" env:"LEARNFLOW_URL"`
	Email    string        `help:"Account email." required:"" env:"LEARNFLOW_EMAIL"`
	Password string        `help:"Account password." required:"" env:"LEARNFLOW_PASSWORD"`
	Timeout  time.Duration `help:"Request timeout." default:"15s"`
}

func (c *RemoteSummaryCmd) Run(_ *Context) error {
	rctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	api := client.New(c.URL)
	if _, err := api.Login(rctx, c.Email, c.Password); err != nil {
		return err
	}
	defer api.Logout(rctx)

	summary, err := api.Summary(rctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
