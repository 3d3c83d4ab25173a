package seedcorpus

import "fmt"

// RepositoryName derives the dataset repository name for one seed's corpus,
// e.g. RepositoryName("fr", "liberation") == "lm_fr_pseudocrawl_liberation".
func RepositoryName(language, name string) string {
	return fmt.Sprintf("lm_%s_pseudocrawl_%s", language, name)
}

// ArtifactFileName returns the file name the corpus artifact is written
// under, which doubles as the name of the file uploaded to the repository.
func ArtifactFileName(repoName string, gzipped bool) string {
	if gzipped {
		return repoName + ".jsonl.gz"
	}
	return repoName + ".jsonl"
}
