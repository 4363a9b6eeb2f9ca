package updater

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/tj/go-update"
	"github.com/tj/go-update/progress"
	"github.com/tj/go-update/stores/github"
)

var (
	Owner   = "wecode"
	Repo    = "proxyman"
	Command = "proxyman"
)

func manager(version string) *update.Manager {
	return &update.Manager{
		Command: Command,
		Store: &github.Store{
			Owner:   Owner,
			Repo:    Repo,
			Version: version,
		},
	}
}

// AutoUpdate replaces the running binary with the latest GitHub release
// built for this platform
func AutoUpdate(version string) error {
	m := manager(version)
	releases, err := m.LatestReleases()
	if err != nil {
		return fmt.Errorf("releases: %w", err)
	}
	if len(releases) == 0 {
		log.Info().Str("version", version).Msg("no updates")
		return nil
	}
	latest := releases[0]
	asset := latest.FindTarball(runtime.GOOS, runtime.GOARCH)
	if asset == nil {
		return fmt.Errorf("no binary for %s %s in %s", runtime.GOOS, runtime.GOARCH, latest.Version)
	}
	tarball, err := asset.DownloadProxy(progress.Reader)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	err = m.Install(tarball)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	log.Info().Str("from", version).Str("to", latest.Version).Msg("updated")
	return nil
}
