package fetcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Card-type codes the sales report is filtered by: the card acquirers plus
// Pix. Cash codes stay out so the report only carries reconcilable sales.
var defaultCardCodes = []string{"1", "9", "10", "11", "16", "17"}

// Portal describes the Trier web portal and the report parameters, loaded
// from a small YAML file so portals can differ between environments.
type Portal struct {
	URL         string   `yaml:"url"`
	UserEnv     string   `yaml:"user_env"`
	PasswordEnv string   `yaml:"password_env"`
	CardCodes   []string `yaml:"card_codes"`
	DownloadDir string   `yaml:"download_dir"`
}

// LoadPortal reads a portal description from a YAML file.
func LoadPortal(path string) (*Portal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portal file: %w", err)
	}

	var p Portal
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if p.URL == "" {
		return nil, fmt.Errorf("portal file has no url")
	}
	if p.UserEnv == "" {
		p.UserEnv = "trier_user"
	}
	if p.PasswordEnv == "" {
		p.PasswordEnv = "trier_password"
	}
	if len(p.CardCodes) == 0 {
		p.CardCodes = defaultCardCodes
	}
	if p.DownloadDir == "" {
		p.DownloadDir = "."
	}
	return &p, nil
}

// Credentials resolves the portal login from the environment.
func (p *Portal) Credentials() (user, password string, err error) {
	user = os.Getenv(p.UserEnv)
	password = os.Getenv(p.PasswordEnv)
	if user == "" || password == "" {
		return "", "", fmt.Errorf("environment variables %s and/or %s not set", p.UserEnv, p.PasswordEnv)
	}
	return user, password, nil
}
