package model

type ServiceType string

const (
	ServiceTypeRepack     ServiceType = "repack"
	ServiceTypeKitting    ServiceType = "kitting"
	ServiceTypeFumigation ServiceType = "fumigation"
	ServiceTypeCycleCount ServiceType = "cycle_count"
	ServiceTypeSplit      ServiceType = "split"
	ServiceTypeLabeling   ServiceType = "labeling"
	ServiceTypeSurcharge  ServiceType = "surcharge"
	ServiceTypeCrossDock  ServiceType = "cross_dock"
)

// ServiceTypeTraits describes what a service type permits at creation time.
type ServiceTypeTraits struct {
	DisplayName string

	// RequiresPallet: without a pallet the transaction's material lines can
	// never be located for amendment or void.
	RequiresPallet bool

	AllowsMaterialLines bool
	AllowsLaborLines    bool
}

// serviceTypeTraits is a closed map: an unknown service type is rejected
// outright rather than handled by a default branch.
var serviceTypeTraits = map[ServiceType]ServiceTypeTraits{
	ServiceTypeRepack:     {DisplayName: "Repack", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: true},
	ServiceTypeKitting:    {DisplayName: "Kitting", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: true},
	ServiceTypeFumigation: {DisplayName: "Fumigation", RequiresPallet: false, AllowsMaterialLines: true, AllowsLaborLines: true},
	ServiceTypeCycleCount: {DisplayName: "Cycle count", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: false},
	ServiceTypeSplit:      {DisplayName: "Split", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: false},
	ServiceTypeLabeling:   {DisplayName: "Labeling", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: true},
	ServiceTypeSurcharge:  {DisplayName: "Surcharge", RequiresPallet: false, AllowsMaterialLines: false, AllowsLaborLines: true},
	ServiceTypeCrossDock:  {DisplayName: "Cross-dock", RequiresPallet: true, AllowsMaterialLines: true, AllowsLaborLines: true},
}

func (s ServiceType) Traits() (ServiceTypeTraits, bool) {
	t, ok := serviceTypeTraits[s]
	return t, ok
}

func (s ServiceType) Valid() bool {
	_, ok := serviceTypeTraits[s]
	return ok
}
