package bybit

// walletBalanceResult is the result object of GET /v5/account/wallet-balance
type walletBalanceResult struct {
	List []struct {
		AccountType        string `json:"accountType"`
		TotalEquity        string `json:"totalEquity"`
		TotalWalletBalance string `json:"totalWalletBalance"`
		Coin               []struct {
			Coin          string `json:"coin"`
			WalletBalance string `json:"walletBalance"`
			Locked        string `json:"locked"`
			Equity        string `json:"equity"`
		} `json:"coin"`
	} `json:"list"`
}

// placeOrderResult is the result object of POST /v5/order/create
type placeOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}
