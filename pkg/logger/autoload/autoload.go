package autoload

import (
	configx "github.com/Chispasgg/personal-ai-agent-api/pkg/config"
	logx "github.com/Chispasgg/personal-ai-agent-api/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
