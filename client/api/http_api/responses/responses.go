package responses

import (
	"github.com/qash-finance/qash-sub002/client/services/syncer"
)

type BaseResponse struct {
	ErrorMessage string      `json:"error_message,omitempty"`
	Result       interface{} `json:"result"`
}

type NodeInfo struct {
	Username   string `json:"username"`
	PublicKey  string `json:"public_key"`
	Commitment string `json:"commitment"`
}

type SyncStatus struct {
	syncer.Status
	Accounts []string `json:"accounts"`
}
