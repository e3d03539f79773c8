package main

import (
	"context"

	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the embedded example configuration to the config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)

	r.writePlain("✓ Configuration written to %s\n\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set client_id and client_secret under [credentials.spotify] (or %s / %s)\n", shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Add %s as a redirect URI in the Spotify developer dashboard\n", r.config.Credentials.Spotify.RedirectURI)
	r.writePlain("3. Run 'imspotify auth' to log in\n")
	return nil
}
