package licensing

// Plan represents a subscription plan tier
type Plan string

const (
	PlanTrial      Plan = "trial"
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// String returns the string representation of the plan
func (p Plan) String() string {
	return string(p)
}

// IsValid returns true if the plan is one of the known tiers
func (p Plan) IsValid() bool {
	switch p {
	case PlanTrial, PlanFree, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Limits holds the quota ceilings for a plan.
// A nil ceiling means the resource is unbounded.
type Limits struct {
	MaxProducts *int64
	MaxOrders   *int64
}

func ceiling(n int64) *int64 {
	return &n
}

// planLimits is the fixed plan-to-limits table. Plans are a closed set;
// changing a tier's ceilings is a code change, not configuration.
var planLimits = map[Plan]Limits{
	PlanTrial:      {MaxProducts: ceiling(25), MaxOrders: ceiling(50)},
	PlanFree:       {MaxProducts: ceiling(10), MaxOrders: ceiling(25)},
	PlanStarter:    {MaxProducts: ceiling(50), MaxOrders: ceiling(100)},
	PlanPro:        {MaxProducts: ceiling(2000), MaxOrders: nil},
	PlanEnterprise: {MaxProducts: nil, MaxOrders: nil},
}

// LimitsFor returns the quota ceilings for the given plan.
// Unknown plans get the free tier's ceilings.
func LimitsFor(plan Plan) Limits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}
