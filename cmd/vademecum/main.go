package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"vademecum/internal"
	"vademecum/internal/browse"
	"vademecum/internal/codes"
	"vademecum/internal/config"
	"vademecum/internal/logging"
	"vademecum/internal/records"
	"vademecum/internal/storage"
	"vademecum/internal/transfer"
	"vademecum/internal/util"
	"vademecum/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()
	svc := codes.NewSyncService(db, cfg, logger)

	cmd := os.Args[1]
	switch cmd {
	case "codes:sync":
		run, err := svc.FullSync(ctx)
		must(err)
		fmt.Printf("sync complete: %d articles in %d codes trace=%s\n", run.Counts["records"], run.Counts["codes"], run.TraceID)
	case "codes:refresh":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		codigo := fs.String("codigo", "", "comma separated code names")
		_ = fs.Parse(os.Args[2:])
		names := splitList(*codigo)
		if len(names) == 0 {
			must(fmt.Errorf("--codigo is required"))
		}
		run, err := svc.RefreshCodes(ctx, names)
		must(err)
		fmt.Printf("refresh complete: codes=%d articles=%d trace=%s\n", run.Counts["codes"], run.Counts["records"], run.TraceID)
	case "codes:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		query := fs.String("q", "", "filter by name or description")
		byTipo := fs.Bool("by-tipo", false, "bucket codes by category")
		remote := fs.Bool("remote", false, "read from the API instead of the local snapshot")
		_ = fs.Parse(os.Args[2:])
		recs, err := loadRecords(ctx, db, svc.Client(), *remote)
		must(err)
		groups := browse.FilterGroups(browse.Group(recs), *query)
		if *byTipo {
			for _, bucket := range browse.BucketByTipo(groups) {
				fmt.Printf("%s\n", bucket.Tipo)
				for _, g := range bucket.Groups {
					printGroup("  ", g)
				}
			}
			return
		}
		for _, g := range groups {
			printGroup("", g)
		}
	case "codes:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		codigo := fs.String("codigo", "", "code name or key")
		artigo := fs.String("artigo", "", "filter the article index")
		query := fs.String("q", "", "filter articles by text")
		remote := fs.Bool("remote", false, "refetch the code from the API")
		asJSON := fs.Bool("json", false, "print the view as JSON")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*codigo) == "" {
			must(fmt.Errorf("--codigo is required"))
		}
		view, err := openView(ctx, db, svc.Client(), *codigo, *remote)
		must(err)
		view = browse.Narrow(view, *artigo, *query)
		if *asJSON {
			blob, err := util.MarshalNoEscape(view, true)
			must(err)
			fmt.Println(string(blob))
			return
		}
		printView(view)
	case "codes:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "vade-mecum.xlsx"), "output xlsx path")
		query := fs.String("q", "", "export only matching codes")
		_ = fs.Parse(os.Args[2:])
		recs, err := db.ListArticles()
		must(err)
		groups := browse.FilterGroups(browse.Group(recs), *query)
		if len(groups) == 0 {
			must(fmt.Errorf("nothing to export, run codes:sync first"))
		}
		must(transfer.ExportGroupsToXLSX(groups, *out))
		fmt.Printf("exported %d codes to %s\n", len(groups), *out)
	case "codes:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "json|xlsx|pdf|html|text (detected when empty)")
		codigo := fs.String("codigo", "", "nomeCodigo for text sources")
		tipo := fs.String("tipo", "", "tipo for text sources")
		cabecalho := fs.String("cabecalho", "", "cabecalho for text sources")
		push := fs.Bool("push", false, "create the records through the admin API")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		blob, err := os.ReadFile(*input)
		must(err)
		kind := *inType
		if strings.TrimSpace(kind) == "" {
			kind = transfer.DetectType(*input, blob)
		}
		recs, err := transfer.Import(kind, blob, transfer.ImportMeta{NomeCodigo: *codigo, Tipo: *tipo, Cabecalho: *cabecalho})
		must(err)
		if *push {
			must(cfg.Require("VADE_MECUM_API_TOKEN", cfg.APIToken))
			for _, rec := range recs {
				_, err := svc.Client().CreateRecord(ctx, codes.NewAdminRecord(rec))
				must(err)
			}
			fmt.Printf("pushed %d articles type=%s\n", len(recs), kind)
			return
		}
		must(storeByCode(db, recs))
		fmt.Printf("imported %d articles type=%s\n", len(recs), kind)
	case "admin:upsert":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "JSON file with one record or a list")
		id := fs.String("id", "", "update this record instead of creating")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		blob, err := os.ReadFile(*file)
		must(err)
		recs, err := records.NormalizePayload(blob)
		must(err)
		if strings.TrimSpace(*id) != "" {
			if len(recs) != 1 {
				must(fmt.Errorf("--id needs exactly one record, got %d", len(recs)))
			}
			saved, err := svc.Client().UpdateRecord(ctx, *id, codes.NewAdminRecord(recs[0]))
			must(err)
			fmt.Printf("updated id=%s echoed=%d\n", *id, len(saved))
			return
		}
		for _, rec := range recs {
			saved, err := svc.Client().CreateRecord(ctx, codes.NewAdminRecord(rec))
			must(err)
			for _, s := range saved {
				fmt.Printf("created id=%s codigo=%s artigo=%s\n", s.ID, s.NomeCodigo, s.NumArtigo)
			}
		}
	case "admin:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "record id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		must(svc.Client().DeleteRecord(ctx, *id))
		fmt.Printf("deleted id=%s\n", *id)
	case "codes:status":
		last, err := svc.LastFullSync()
		must(err)
		fmt.Printf("last full sync: %s\n", util.FirstNonEmpty(util.DerefString(last), "never"))
		for _, kind := range []string{codes.RunKindFull, codes.RunKindRefresh} {
			run, err := db.LastRun(kind)
			must(err)
			if run == nil {
				continue
			}
			fmt.Printf("last %s run: trace=%s codes=%d articles=%d\n", kind, run.TraceID, run.Counts["codes"], run.Counts["records"])
		}
	case "codes:watch":
		w := watcher.NewService(db, svc, cfg, logger)
		sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(w.Run(sigCtx))
	default:
		usage()
		os.Exit(1)
	}
}

func loadRecords(ctx context.Context, db *storage.DB, client *codes.Client, remote bool) ([]internal.CodeArticleRecord, error) {
	if remote {
		return client.ListRecords(ctx)
	}
	return db.ListArticles()
}

func openView(ctx context.Context, db *storage.DB, client *codes.Client, ref string, remote bool) (internal.GroupView, error) {
	if remote {
		return codes.NewDetailLoader(client).Open(ctx, ref)
	}
	recs, err := db.ListArticles()
	if err != nil {
		return internal.GroupView{}, err
	}
	group, ok := browse.FindGroup(browse.Group(recs), ref)
	if !ok {
		return internal.GroupView{}, fmt.Errorf("code not found in local snapshot: %s", ref)
	}
	return browse.Open(group), nil
}

// storeByCode replaces the local rows of every code present in recs.
func storeByCode(db *storage.DB, recs []internal.CodeArticleRecord) error {
	byCode := map[string][]internal.CodeArticleRecord{}
	order := []string{}
	for _, rec := range recs {
		nome := strings.TrimSpace(rec.NomeCodigo)
		if _, ok := byCode[nome]; !ok {
			order = append(order, nome)
		}
		byCode[nome] = append(byCode[nome], rec)
	}
	for _, nome := range order {
		if err := db.ReplaceCode(nome, byCode[nome]); err != nil {
			return err
		}
	}
	return nil
}

func printGroup(indent string, g internal.CodeGroup) {
	line := fmt.Sprintf("%s%s (%d artigos)", indent, g.Label, len(g.Records))
	if g.Description != "" {
		line += " - " + g.Description
	}
	fmt.Println(line)
}

func printView(view internal.GroupView) {
	fmt.Printf("%s\n", view.Group.Label)
	if view.Group.Description != "" {
		fmt.Printf("%s\n", view.Group.Description)
	}
	for _, section := range view.Sections {
		fmt.Printf("\n[%s | %s | %s]\n", section.LivroLine, section.TituloLine, section.CapituloLine)
		for _, item := range section.Items {
			label := util.FirstNonEmpty(item.ArticleNumber, item.OrderLabel)
			fmt.Printf("  Art. %s  %s\n", label, util.StripHTML(item.Normativo))
		}
	}
	keys := make([]string, 0, len(view.Index))
	for _, e := range view.Index {
		keys = append(keys, e.Key)
	}
	fmt.Printf("\nindice: %s\n", strings.Join(keys, ", "))
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usage() {
	fmt.Println("usage: vademecum <command>")
	fmt.Println("commands:")
	fmt.Println("  codes:sync")
	fmt.Println("  codes:refresh --codigo=\"Código Civil,Código Penal\"")
	fmt.Println("  codes:list [--q=texto] [--by-tipo] [--remote]")
	fmt.Println("  codes:show --codigo=\"Código Civil\" [--artigo=5] [--q=texto] [--remote] [--json]")
	fmt.Println("  codes:export [--out=./out/vade-mecum.xlsx] [--q=texto]")
	fmt.Println("  codes:import --input=... [--type=json|xlsx|pdf|html|text] [--codigo=... --tipo=... --cabecalho=...] [--push]")
	fmt.Println("  admin:upsert --file=record.json [--id=...]")
	fmt.Println("  admin:delete --id=...")
	fmt.Println("  codes:status")
	fmt.Println("  codes:watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
