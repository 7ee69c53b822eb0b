// Package transcriptome maps a species and k-mer size to the kallisto index
// file inside a transcriptome folder. Downloading and building indices is
// left to other tooling; this package only names and checks them.
package transcriptome

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"

	"github.com/willtownes/patel2014gliohuman/fileio"
	"github.com/willtownes/patel2014gliohuman/kmer"
	"github.com/willtownes/patel2014gliohuman/runinfo"
)

// IndexExtension is the suffix given to kallisto index files.
const IndexExtension = "kidx"

// Prefixes are the Ensembl cDNA releases indexed for each known species.
var Prefixes = map[runinfo.Species]string{
	runinfo.HomoSapiens: "Homo_sapiens.GRCh38.rel79.cdna.all",
	runinfo.MusMusculus: "Mus_musculus.GRCm38.rel79.cdna.all",
}

// IndexName returns the index file name for species. An explicit k-mer size
// is part of the name; the default size is not.
func IndexName(species runinfo.Species, k kmer.Size) (string, error) {
	prefix, exists := Prefixes[species]
	if !exists {
		return "", fmt.Errorf("no transcriptome is known for species %q", species)
	}

	if k.IsDefault() {
		return fmt.Sprintf("%s.%s", prefix, IndexExtension), nil
	}

	return fmt.Sprintf("%s.k%d.%s", prefix, int(k), IndexExtension), nil
}

// Folder is a local directory or gs:// prefix holding kallisto indices.
type Folder struct {
	Path string

	// Client is only needed when Path is a gs:// location.
	Client *storage.Client
}

// Resolve returns the full path of the index for species and k.
func (f Folder) Resolve(species runinfo.Species, k kmer.Size) (string, error) {
	name, err := IndexName(species, k)
	if err != nil {
		return "", pfx.Err(err)
	}

	if strings.HasPrefix(f.Path, "gs://") {
		return strings.TrimSuffix(f.Path, "/") + "/" + path.Clean(name), nil
	}

	return filepath.Join(f.Path, name), nil
}

// Check verifies that every index named in kmers is present, and returns an
// error naming each missing file.
func (f Folder) Check(ctx context.Context, kmers kmer.Map) error {
	var missing []string
	for _, species := range kmers.Species() {
		k := kmers[species]
		indexPath, err := f.Resolve(species, k)
		if err != nil {
			return err
		}

		exists, err := fileio.Exists(ctx, indexPath, f.Client)
		if err != nil {
			return pfx.Err(err)
		}
		if !exists {
			missing = append(missing, fmt.Sprintf("%s (species %s, k-mer size %s)", indexPath, species, k))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing transcriptome index: %s", strings.Join(missing, "; "))
	}

	return nil
}
