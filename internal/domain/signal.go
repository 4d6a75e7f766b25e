package domain

import "strings"

// SignalType classifies what kind of market event the sentiment layer detected.
type SignalType string

const (
	SignalPumpIncoming  SignalType = "PUMP_INCOMING"
	SignalDumpIncoming  SignalType = "DUMP_INCOMING"
	SignalStable        SignalType = "STABLE"
	SignalListingRumor  SignalType = "LISTING_RUMOR"
	SignalWhaleActivity SignalType = "WHALE_ACTIVITY"
	SignalNewsCatalyst  SignalType = "NEWS_CATALYST"
)

// Urgency grades how time-sensitive a signal is.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// RiskLevel grades the current risk assessment for a token.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// MarketPhase is the on-chain intelligence layer's phase prediction.
type MarketPhase string

const (
	PhaseMomentumBuilding        MarketPhase = "MOMENTUM_BUILDING"
	PhaseAccumulation            MarketPhase = "ACCUMULATION_PHASE"
	PhaseDistribution            MarketPhase = "DISTRIBUTION_PHASE"
	PhaseVolatilitySpikeIncoming MarketPhase = "VOLATILITY_SPIKE_INCOMING"
	PhaseUnknown                 MarketPhase = "UNKNOWN"
)

// Direction describes which venue to buy on and which to sell on.
type Direction string

const (
	DirectionNone          Direction = "NONE"
	DirectionBuyDEXSellCEX Direction = "BUY_DEX_SELL_CEX"
	DirectionBuyCEXSellDEX Direction = "BUY_CEX_SELL_DEX"
)

// Action is the discrete trading decision.
type Action string

const (
	ActionHold         Action = "HOLD"
	ActionMonitor      Action = "MONITOR"
	ActionPaperTrade   Action = "PAPER_TRADE"
	ActionExecuteTrade Action = "EXECUTE_TRADE"
)

// SignalInputs is the normalized per-cycle input to the decision engine.
// Upstream data is inherently unreliable: a zero price means "unavailable",
// never a valid traded price.
type SignalInputs struct {
	Token string

	// Sentiment layer
	SentimentSignal float64 // fused sentiment in [-1, 1]
	SignalType      SignalType
	Urgency         Urgency
	ArbOpportunity  bool // upstream LLM's own opinion

	// Price layer
	CEXPrice float64 // 0 = unavailable
	DEXPrice float64 // 0 = unavailable

	// On-chain intelligence layer
	PredictedPhase MarketPhase
	RiskLevel      RiskLevel
}

// ParseSignalType maps free-form categorical text to a SignalType.
// Unknown values degrade to STABLE rather than failing.
func ParseSignalType(s string) SignalType {
	switch SignalType(strings.ToUpper(strings.TrimSpace(s))) {
	case SignalPumpIncoming, SignalDumpIncoming, SignalListingRumor,
		SignalWhaleActivity, SignalNewsCatalyst, SignalStable:
		return SignalType(strings.ToUpper(strings.TrimSpace(s)))
	default:
		return SignalStable
	}
}

// ParseUrgency maps free-form text to an Urgency. Unknown values degrade to LOW.
func ParseUrgency(s string) Urgency {
	switch Urgency(strings.ToUpper(strings.TrimSpace(s))) {
	case UrgencyHigh:
		return UrgencyHigh
	case UrgencyMedium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ParseRiskLevel maps free-form text to a RiskLevel. Unknown values degrade to MEDIUM.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskHigh:
		return RiskHigh
	case RiskLow:
		return RiskLow
	default:
		return RiskMedium
	}
}

// ParseMarketPhase maps free-form text to a MarketPhase. Unknown values degrade to UNKNOWN.
func ParseMarketPhase(s string) MarketPhase {
	switch MarketPhase(strings.ToUpper(strings.TrimSpace(s))) {
	case PhaseMomentumBuilding, PhaseAccumulation, PhaseDistribution, PhaseVolatilitySpikeIncoming:
		return MarketPhase(strings.ToUpper(strings.TrimSpace(s)))
	default:
		return PhaseUnknown
	}
}
