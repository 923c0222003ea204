package models

// -----------------------------------------------------------------------------
// Persisted user settings (settings.json) and the single admin user
// (user.json). Masked copies of the API credentials are written alongside
// the real values so the dashboard can render them without re-reading
// secrets.
// -----------------------------------------------------------------------------

type MSettings struct {
	AlpacaAPIKey    string `json:"alpaca_api_key,omitempty"`
	AlpacaAPISecret string `json:"alpaca_api_secret,omitempty"`
	AlpacaPaper     bool   `json:"alpaca_paper"`

	NotifyEmail     string `json:"notify_email,omitempty"`
	NotifySMSNumber string `json:"notify_sms_number,omitempty"`

	DisplayTheme  string `json:"display_theme"`
	DisplayLayout string `json:"display_layout"`

	// Pi display widget toggles
	WidgetBTCPrice  bool `json:"widget_btc_price"`
	WidgetPortfolio bool `json:"widget_portfolio"`
	WidgetPositions bool `json:"widget_positions"`
	WidgetPnL       bool `json:"widget_pnl"`
	WidgetClock     bool `json:"widget_clock"`
	WidgetAlerts    bool `json:"widget_alerts"`

	AlpacaAPIKeyMasked    string `json:"alpaca_api_key_masked,omitempty"`
	AlpacaAPISecretMasked string `json:"alpaca_api_secret_masked,omitempty"`
}

// -----------------------------------------------------------------------------

// DefaultSettings mirrors the defaults the dashboard expects on first boot.
func DefaultSettings() MSettings {
	return MSettings{
		AlpacaPaper:     true,
		DisplayTheme:    "dark-gold",
		DisplayLayout:   "braiins-style",
		WidgetBTCPrice:  true,
		WidgetPortfolio: true,
		WidgetPositions: true,
		WidgetPnL:       true,
		WidgetClock:     false,
		WidgetAlerts:    true,
	}
}

// -----------------------------------------------------------------------------

// MSettingsUpdate carries a partial settings update; nil fields are left
// untouched.
type MSettingsUpdate struct {
	AlpacaAPIKey    *string `json:"alpaca_api_key"`
	AlpacaAPISecret *string `json:"alpaca_api_secret"`
	AlpacaPaper     *bool   `json:"alpaca_paper"`
	NotifyEmail     *string `json:"notify_email"`
	NotifySMSNumber *string `json:"notify_sms_number"`
	DisplayTheme    *string `json:"display_theme"`
	DisplayLayout   *string `json:"display_layout"`
	WidgetBTCPrice  *bool   `json:"widget_btc_price"`
	WidgetPortfolio *bool   `json:"widget_portfolio"`
	WidgetPositions *bool   `json:"widget_positions"`
	WidgetPnL       *bool   `json:"widget_pnl"`
	WidgetClock     *bool   `json:"widget_clock"`
	WidgetAlerts    *bool   `json:"widget_alerts"`
}

// -----------------------------------------------------------------------------

type MUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}
