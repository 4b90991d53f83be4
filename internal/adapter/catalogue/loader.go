package catalogue

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"skillmatch/internal/domain"
)

// Required columns in every catalogue file.
var requiredColumns = []string{
	"assessment_name",
	"url",
	"description",
	"test_type",
	"domain",
	"job_level",
}

// Load reads assessments from the catalogue source. The source may be a
// single CSV path or a doublestar glob matching several shard files; shards
// are merged in lexical path order so the combined catalogue order is
// deterministic.
func Load(source string) ([]domain.Assessment, error) {
	paths, err := expand(source)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("catalogue source %q matched no files", source)
	}

	var items []domain.Assessment
	seenURLs := make(map[string]string)

	for _, path := range paths {
		rows, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for _, item := range rows {
			if prev, dup := seenURLs[item.URL]; dup {
				return nil, fmt.Errorf("catalogue %s: duplicate url %q (first seen in %s)", path, item.URL, prev)
			}
			seenURLs[item.URL] = path
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return nil, domain.ErrEmptyCatalogue
	}

	return items, nil
}

// expand resolves a glob source to concrete file paths in lexical order.
func expand(source string) ([]string, error) {
	if !strings.ContainsAny(source, "*?[{") {
		return []string{source}, nil
	}

	paths, err := doublestar.FilepathGlob(source)
	if err != nil {
		return nil, fmt.Errorf("invalid catalogue glob %q: %w", source, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func loadFile(path string) ([]domain.Assessment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, &domain.SchemaError{Source: path, Column: required}
		}
	}

	var items []domain.Assessment
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalogue %s line %d: %w", path, line, err)
		}

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		url := field("url")
		if url == "" {
			return nil, fmt.Errorf("catalogue %s line %d: empty url", path, line)
		}

		// Unknown type codes fall back to General, same as missing codes.
		category, ok := domain.ParseCategory(field("test_type"))
		if !ok {
			category = domain.CategoryGeneral
		}

		items = append(items, domain.Assessment{
			ID:          itemID(url),
			Name:        field("assessment_name"),
			URL:         url,
			Description: field("description"),
			Category:    category,
			Domain:      field("domain"),
			JobLevel:    field("job_level"),
		})
	}

	return items, nil
}

// itemID derives a stable identifier from the item URL.
func itemID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:8])
}

// Fingerprint hashes the catalogue content. The vector index records it so a
// changed catalogue invalidates cached embeddings.
func Fingerprint(items []domain.Assessment) string {
	h := sha256.New()
	for _, item := range items {
		for _, field := range []string{item.Name, item.URL, item.Description, string(item.Category), item.Domain, item.JobLevel} {
			h.Write([]byte(field))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SurrogateText composes the text encoded for one item. Field order is fixed
// (name, description, domain, category label) because it affects the vector.
func SurrogateText(item domain.Assessment) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{item.Name, item.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if item.Domain != "" {
		parts = append(parts, "Domain: "+item.Domain)
	}
	parts = append(parts, "Type: "+item.Category.Label())
	return strings.Join(parts, ". ")
}
