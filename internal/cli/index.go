package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"skillmatch/config"
	"skillmatch/internal/adapter/catalogue"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the catalogue vector index",
	Long: `Load the catalogue, embed every item, and persist the vector index.
The index is stored in .skillmatch/index.db and reused as long as the
catalogue content and encoder model stay the same.

Examples:
  skillmatch index             # Build or reuse the index
  skillmatch index --rebuild   # Discard the cached index first`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "discard the cached index and re-embed everything")
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexRebuild {
		dbPath := config.IndexDBPath(GetRootDir())
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached index: %w", err)
		}
	}

	items, err := catalogue.Load(cataloguePath())
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}
	fmt.Printf("Loaded %d catalogue items\n", len(items))

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var initialized bool

	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(done)
	}

	idx, err := buildIndex(items, embedder, progress)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("Index ready: %d vectors, model=%s, dimension=%d\n", idx.Size(), embedder.ModelName(), embedder.Dimension())
	return nil
}
