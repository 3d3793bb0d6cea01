package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kdudkov/valentine/internal/config"
	"github.com/kdudkov/valentine/internal/model"
	"github.com/kdudkov/valentine/internal/repository"
)

type Entry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// sorted orders entries by numeric id; non-numeric ids go last, by string.
func sorted(m map[string]string) []Entry {
	res := make([]Entry, 0, len(m))

	for id, name := range m {
		res = append(res, Entry{ID: id, Name: name})
	}

	sort.Slice(res, func(i, j int) bool {
		a, errA := strconv.ParseInt(res[i].ID, 10, 64)
		b, errB := strconv.ParseInt(res[j].ID, 10, 64)

		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return res[i].ID < res[j].ID
		}
	})

	return res
}

func list(w io.Writer, entries []Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Name)
	}
}

func export(fn string, entries []Entry) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}

	defer f.Close()

	enc := yaml.NewEncoder(f)
	if err := enc.Encode(entries); err != nil {
		return err
	}

	return enc.Close()
}

func run(ctx context.Context, repo repository.InvitationRepository, cfg *config.AppConfig, add, exportFile string, w io.Writer) error {
	if add != "" {
		if err := model.CheckName(add, cfg.NameMaxLen()); err != nil {
			return err
		}

		id, err := repo.Create(ctx, add)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, id)

		return nil
	}

	all, err := repo.All(ctx)
	if err != nil {
		return err
	}

	entries := sorted(all)

	if exportFile != "" {
		if err := export(exportFile, entries); err != nil {
			return err
		}

		fmt.Fprintf(w, "exported %d invitations to %s\n", len(entries), exportFile)

		return nil
	}

	list(w, entries)

	return nil
}

func main() {
	conf := flag.String("config", "", "name of config file")
	backend := flag.String("backend", "", "store backend (file, redis, db)")
	add := flag.String("add", "", "create an invitation for this name")
	exportFile := flag.String("export", "", "write all invitations to yaml file")
	debug := flag.Bool("debug", false, "debug")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	_ = godotenv.Load()

	cfg := config.NewAppConfig()

	if *conf != "" {
		if err := cfg.Load(*conf); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
	}

	if *backend != "" {
		cfg.Set("backend", *backend)
	}

	repo, err := repository.New(cfg)
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	if err := repo.Start(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	err = run(ctx, repo, cfg, *add, *exportFile, os.Stdout)

	cancel()
	repo.Stop()

	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
