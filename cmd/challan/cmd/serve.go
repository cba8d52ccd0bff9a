package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"challan-service/cmd/challan/config"
	"challan-service/internal/ifsc"
	"challan-service/internal/pipeline"
	"challan-service/internal/server"
	"challan-service/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve challan generation and IFSC lookup over HTTP",
	Long: `Serve starts the HTTP API. Payroll and roster files are uploaded as
multipart form data to POST /api/v1/challans and the generated files are
returned in the response; nothing is written on the server.

Routes:
  GET  /healthz
  GET  /api/v1/profiles
  POST /api/v1/challans
  GET  /api/v1/ifsc/{code}

Examples:
  challan serve
  CHALLAN_SERVER_ADDR=:9090 challan serve --log-format json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Int64("max-body-bytes", 0, "upload size limit in bytes")

	viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag(config.KeyServerMaxBodyBytes, serveCmd.Flags().Lookup("max-body-bytes"))
}

func runServe(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()

	// Requests are logged as JSON unless configured otherwise
	if v.GetString(config.KeyLogFormat) == "" {
		logConfig := logger.ServerConfig()
		if verbose {
			logConfig.Level = logger.DebugLevel
		}
		log, err := logger.NewLogger(logConfig)
		if err != nil {
			return err
		}
		logger.SetGlobalLogger(log)
	}

	serverConfig, err := config.CreateServerConfig(v)
	if err != nil {
		return err
	}
	pipelineConfig, err := config.CreatePipelineConfig(v)
	if err != nil {
		return err
	}
	ifscConfig, err := config.CreateIFSCConfig(v)
	if err != nil {
		return err
	}

	service, err := pipeline.NewService(pipelineConfig)
	if err != nil {
		return err
	}
	lookup, err := ifsc.NewClient(ifscConfig)
	if err != nil {
		return err
	}
	srv, err := server.New(serverConfig, service, lookup)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(cmd.Context())
}
