package binance

// accountResponse is the subset of GET /api/v3/account this tool reads
type accountResponse struct {
	CanTrade    bool   `json:"canTrade"`
	UpdateTime  int64  `json:"updateTime"`
	AccountType string `json:"accountType"`
	Balances    []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// orderResponse is the ACK/RESULT body of POST /api/v3/order
type orderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	TransactTime  int64  `json:"transactTime"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	TimeInForce   string `json:"timeInForce"`
	Type          string `json:"type"`
	Side          string `json:"side"`
}
