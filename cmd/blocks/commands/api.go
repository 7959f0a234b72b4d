package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/api"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                            - Health check
  GET  /api/blocks                        - 블록 목록
  GET  /api/blocks/{id}/stats             - 성과 통계
  GET  /api/blocks/{id}/chart             - 차트 데이터
  GET  /api/blocks/{id}/chart.png         - 차트 이미지
  GET  /api/blocks/{id}/snapshot          - 캐시된 스냅샷
  GET  /api/blocks/{id}/benchmark         - 벤치마크 상관/베타
  GET  /api/blocks/{id}/risk              - VaR / Monte Carlo
  POST /api/analyze                       - 엔트리 직접 분석
  POST /api/correlation                   - 상관관계 행렬
  POST /api/superblock                    - Super Block 합성

Example:
  go run ./cmd/blocks api
  go run ./cmd/blocks api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 파일 입력 엔드포인트는 DB 없이도 동작
	env, cleanup, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if apiPort != "" {
		env.cfg.Port = apiPort
	}

	env.log.WithFields(map[string]interface{}{
		"port":     env.cfg.Port,
		"env":      env.cfg.Env,
		"database": env.db != nil,
	}).Info("Initializing API server")

	server := api.NewFromService(env.cfg, env.log, env.svc)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", env.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Ctrl+C 시 graceful shutdown
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	env.log.Info("Server stopped")
	return nil
}
