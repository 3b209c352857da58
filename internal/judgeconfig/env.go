package judgeconfig

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads problemDir/.env if present, so CXX/CXXFLAGS
// overrides can live alongside the problem instead of the caller's
// shell. A missing file is not an error; a malformed one is reported
// as-is since it indicates a typo in the problem's own dotfile.
func LoadDotEnv(problemDir string) error {
	path := filepath.Join(problemDir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}
