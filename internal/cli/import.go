package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a legacy favorites list once",
	Long: `Link every favorite of a legacy list to the global activity, in order.

The list is either YAML (a sequence of ids, or a mapping with a 'favorites'
sequence) or an INI file with a comma-separated 'favorites' key in its
[General] group. The import runs once; state.toml records that it ran.
--force runs it again.`,
	Example: `  favs import favorites.yaml
  favs import ~/.config/plasma-org.kde.plasma.desktop-appletsrc --force`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	ids, err := readLegacyFavorites(args[0])
	if err != nil {
		return handleError(w, ErrFileReadError, err, "")
	}

	s, err := openSession(commandContext(cmd))
	if err != nil {
		return handleError(w, ErrStoreError, err, "")
	}
	defer s.Close()

	if importForce {
		if err := s.flag.Reset(); err != nil {
			return handleError(w, ErrFileWriteError, err, "")
		}
	}

	ran, err := s.model.ImportLegacy(ids)
	if err != nil {
		return handleError(w, ErrFileWriteError, err, "")
	}
	if !ran {
		return handleErrorMsg(w, ErrAlreadyImported, "legacy favorites were already imported", "Use --force to import again")
	}

	if isJSONOutput() {
		outputSuccess(w, map[string]any{"imported": ids, "favorites": s.results.Rows()}, &Meta{Count: len(ids)})
		return nil
	}
	fmt.Fprintf(w, "Imported %d favorites\n", len(ids))
	return nil
}

type legacyList struct {
	Favorites []string `yaml:"favorites"`
}

// readLegacyFavorites reads a legacy favorites list. Files with a .yaml
// or .yml extension are YAML; anything else is INI.
func readLegacyFavorites(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readLegacyYAML(path)
	}
	return readLegacyINI(path)
}

func readLegacyYAML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var ids []string
	if node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&ids)
	} else {
		var list legacyList
		err = node.Content[0].Decode(&list)
		ids = list.Favorites
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return compactIDs(ids), nil
}

func readLegacyINI(path string) ([]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	sec, err := f.GetSection("General")
	if err != nil || !sec.HasKey("favorites") {
		return nil, fmt.Errorf("%s: no favorites key in [General]", path)
	}
	return compactIDs(sec.Key("favorites").Strings(",")), nil
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func init() {
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import even if an import already ran")
	rootCmd.AddCommand(importCmd)
}
