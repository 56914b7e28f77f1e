package models

type Dashboard struct {
	TotalFacilities   int             `json:"totalFacilities"`
	ThisMonth         int             `json:"thisMonth"`
	TotalBookings     int             `json:"totalBookings"`
	MonthlyBookings   int             `json:"monthlyBookings"`
	TotalEarnings     float64         `json:"totalEarnings"`
	MonthlyEarnings   float64         `json:"monthlyEarnings"`
	MonthlyComparison int             `json:"monthlyComparison"`
	MonthlyPayouts    []MonthlyPayout `json:"monthlyPayouts"`
	StartupsByType    []MonthlyCounts `json:"startupsByType"`
}

type MonthlyPayout struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type MonthlyCounts struct {
	Month  string               `json:"month"`
	Counts map[FacilityType]int `json:"counts"`
}

// MonthLabelLayout renders months as "Jan 25".
const MonthLabelLayout = "Jan 06"
