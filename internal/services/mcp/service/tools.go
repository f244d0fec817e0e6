package service

import (
	"github.com/louisbranch/diceroll/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerRollTools(server *mcp.Server, roller domain.Roller) {
	mcp.AddTool(server, domain.RollExpressionTool(), domain.RollExpressionHandler(roller))
	mcp.AddTool(server, domain.ParseExpressionTool(), domain.ParseExpressionHandler(roller))
	mcp.AddTool(server, domain.RollDiceTool(), domain.RollDiceHandler(roller))
}
