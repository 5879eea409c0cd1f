package restapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"donation_portal/internal/app/port"
	"donation_portal/internal/app/service"
	"donation_portal/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Deps lists what the HTTP handlers need.
type Deps struct {
	Registry  port.NetworkRegistry
	Rates     port.ExchangeRateService
	Tokens    port.WalletTokenEnumerator
	Donations port.DonationService
	Claims    port.ClaimService
	Handoffs  port.HandoffBridge
	Txs       port.TxLookup
	Sessions  *SessionManager
	// RootCtx outlives requests; confirmations are stashed with it.
	RootCtx        context.Context
	RequestTimeout time.Duration
	Logger         port.Logger
}

// Handler serves the donation portal API.
type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	if d.RootCtx == nil {
		d.RootCtx = context.Background()
	}
	return &Handler{Deps: d}
}

func (h *Handler) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func parseChainID(c *gin.Context, raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid_chain_id", "chain id must be a positive integer")
		return 0, false
	}
	return id, true
}

// ListNetworks handles GET /networks.
func (h *Handler) ListNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"networks": h.Registry.GetAllNetworkDefinitions()})
}

// GetNetwork handles GET /networks/:chainId.
func (h *Handler) GetNetwork(c *gin.Context) {
	chainID, ok := parseChainID(c, c.Param("chainId"))
	if !ok {
		return
	}
	def, ok := h.Registry.GetNetworkConfig(chainID)
	if !ok {
		notFound(c, "Donations are not supported on this network.")
		return
	}
	c.JSON(http.StatusOK, def)
}

// QuoteResponse is the exchange rate of the selected asset and the USD value of the amount.
type QuoteResponse struct {
	ChainID uint64  `json:"chainId"`
	Token   string  `json:"token"`
	Rate    float64 `json:"rate"`
	Amount  string  `json:"amount,omitempty"`
	USD     string  `json:"usd,omitempty"`
	Cached  bool    `json:"cached"`
}

// Quote handles GET /networks/:chainId/quote?token=&amount=.
// The rate is refetched only when the chain or token differs from the session's last quote.
func (h *Handler) Quote(c *gin.Context) {
	chainID, ok := parseChainID(c, c.Param("chainId"))
	if !ok {
		return
	}
	next := service.Selection{ChainID: chainID, TokenAddress: c.Query("token"), AmountHuman: c.Query("amount")}

	var amount decimal.Decimal
	if next.AmountHuman != "" {
		parsed, err := service.ParseAmount(next.AmountHuman)
		if err != nil {
			h.writeError(c, err)
			return
		}
		amount = parsed
	}

	sess := h.Sessions.Get(c.Request)
	prev, rate := sess.Selection()
	effect := service.OnSelectionChange(prev, next)
	cached := rate > 0 && (effect == service.EffectNone || effect == service.EffectRecomputeUSD)
	if !cached {
		ctx, cancel := h.requestCtx(c)
		defer cancel()
		fetched, err := h.Rates.FetchExchangeRate(ctx, chainID, next.TokenAddress)
		if err != nil {
			sess.ClearSelection()
			h.save(c, sess)
			h.writeError(c, err)
			return
		}
		rate = fetched
	}
	sess.SetSelection(next, rate)
	h.save(c, sess)

	resp := QuoteResponse{ChainID: chainID, Token: next.TokenAddress, Rate: rate, Cached: cached}
	if next.AmountHuman != "" {
		resp.Amount = amount.String()
		resp.USD = service.USDValue(amount, rate).StringFixed(2)
	}
	c.JSON(http.StatusOK, resp)
}

// WalletTokens handles GET /networks/:chainId/wallets/:account/tokens.
func (h *Handler) WalletTokens(c *gin.Context) {
	chainID, ok := parseChainID(c, c.Param("chainId"))
	if !ok {
		return
	}
	ctx, cancel := h.requestCtx(c)
	defer cancel()
	tokens, err := h.Tokens.EnumerateWalletTokens(ctx, c.Param("account"), chainID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// DonationHistory handles GET /networks/:chainId/donations?donor=.
func (h *Handler) DonationHistory(c *gin.Context) {
	chainID, ok := parseChainID(c, c.Param("chainId"))
	if !ok {
		return
	}
	ctx, cancel := h.requestCtx(c)
	defer cancel()
	views, err := h.Claims.DonationHistory(ctx, chainID, c.Query("donor"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": views})
}

// DonationRequestBody is the JSON body of POST /donations.
type DonationRequestBody struct {
	ChainID uint64 `json:"chainId" binding:"required"`
	Donor   string `json:"donor" binding:"required"`
	// Token is a token address, or empty/"native" for the chain currency.
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	Message string `json:"message"`
}

// SubmitDonation handles POST /donations.
// The token balance is read on the server, never taken from the request.
func (h *Handler) SubmitDonation(c *gin.Context) {
	var body DonationRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	if _, err := service.ParseAmount(body.Amount); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.requestCtx(c)
	defer cancel()

	token, err := h.walletToken(ctx, body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	sess := h.Sessions.Get(c.Request)
	sessionID := sess.ID()
	h.save(c, sess)

	handle, err := h.Donations.SubmitDonation(ctx, entity.DonationRequest{
		ChainID:     body.ChainID,
		Donor:       body.Donor,
		AmountHuman: body.Amount,
		Token:       token,
		Message:     body.Message,
	}, h.stashListener(sessionID))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handle.Snapshot())
}

// walletToken finds the donor's balance of the requested asset. An asset the donor does not hold
// comes back with a zero balance so validation reports it as insufficient.
func (h *Handler) walletToken(ctx context.Context, body DonationRequestBody) (entity.WalletToken, error) {
	def, ok := h.Registry.GetNetworkConfig(body.ChainID)
	if !ok {
		return entity.WalletToken{}, entity.NewUnsupportedAssetError("chain %d is not supported", body.ChainID)
	}
	native := entity.IsNativeAddress(body.Token)
	meta := def.NativeCurrency
	if !native {
		m, ok := def.Token(body.Token)
		if !ok {
			return entity.WalletToken{}, entity.NewUnsupportedAssetError("token %s is not supported on %s", body.Token, def.Name)
		}
		meta = m
	}

	tokens, err := h.Tokens.EnumerateWalletTokens(ctx, body.Donor, body.ChainID)
	if err != nil {
		return entity.WalletToken{}, err
	}
	if t, ok := service.FindWalletToken(tokens, body.Token); ok {
		return t, nil
	}
	t := entity.WalletToken{Symbol: meta.Symbol, Decimals: meta.Decimals, FormattedBalance: "0", IsNative: native}
	if !native {
		t.Address = body.Token
	}
	return t, nil
}

func (h *Handler) stashListener(sessionID string) port.DonationListener {
	return func(e entity.DonationConfirmed) {
		if err := h.Handoffs.Stash(h.RootCtx, sessionID, e.Handoff()); err != nil {
			h.Logger.Error("Failed to stash donation confirmation", "session_id", sessionID, "tx_hash", e.TxHash, "error", err)
		}
	}
}

// Confirmation handles GET /donations/confirmation. The record is returned once.
func (h *Handler) Confirmation(c *gin.Context) {
	sess := h.Sessions.Get(c.Request)
	if !sess.HasID() {
		notFound(c, "No confirmed donation to show.")
		return
	}
	handoff, ok, err := h.Handoffs.Consume(c.Request.Context(), sess.ID())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "No confirmed donation to show.")
		return
	}
	c.JSON(http.StatusOK, handoff)
}

// Transaction handles GET /transactions/:hash.
func (h *Handler) Transaction(c *gin.Context) {
	handle, ok := h.Txs.Lookup(c.Param("hash"))
	if !ok {
		notFound(c, "Unknown transaction.")
		return
	}
	c.JSON(http.StatusOK, handle.Snapshot())
}

// Eligibility handles GET /claims/eligibility?chainId=&account=&index=.
func (h *Handler) Eligibility(c *gin.Context) {
	chainID, ok := parseChainID(c, c.Query("chainId"))
	if !ok {
		return
	}
	index, err := strconv.ParseUint(c.Query("index"), 10, 64)
	if err != nil {
		badRequest(c, "invalid_index", "index must be a non-negative integer")
		return
	}
	ctx, cancel := h.requestCtx(c)
	defer cancel()
	result, err := h.Claims.CheckEligibility(ctx, chainID, c.Query("account"), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligibility": result, "eligible": result.Eligible()})
}

// ClaimRequestBody is the JSON body of POST /claims.
type ClaimRequestBody struct {
	ChainID       uint64  `json:"chainId" binding:"required"`
	Account       string  `json:"account" binding:"required"`
	DonationIndex *uint64 `json:"donationIndex" binding:"required"`
}

// Claim handles POST /claims.
func (h *Handler) Claim(c *gin.Context) {
	var body ClaimRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid_body", err.Error())
		return
	}
	ctx, cancel := h.requestCtx(c)
	defer cancel()
	handle, err := h.Claims.ClaimNFT(ctx, body.ChainID, body.Account, *body.DonationIndex)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handle.Snapshot())
}

func (h *Handler) save(c *gin.Context, s *Session) {
	if err := h.Sessions.Save(c.Request, c.Writer, s); err != nil {
		h.Logger.Warn("Failed to save session", "error", err)
	}
}
