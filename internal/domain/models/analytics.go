// Package models defines the domain models served by the analytics API.
package models

import "time"

// HourlyEvents is one hour of event counts.
type HourlyEvents struct {
	Date   time.Time `json:"date" gorm:"column:date"`
	Hour   int       `json:"hour" gorm:"column:hour"`
	Events int64     `json:"events" gorm:"column:events"`
}

// DailyEvents is one day of aggregated event counts.
type DailyEvents struct {
	Date   time.Time `json:"date" gorm:"column:date"`
	Events int64     `json:"events" gorm:"column:events"`
}

// HourlyStats is one hour of ad delivery statistics.
type HourlyStats struct {
	Date        time.Time `json:"date" gorm:"column:date"`
	Hour        int       `json:"hour" gorm:"column:hour"`
	Impressions int64     `json:"impressions" gorm:"column:impressions"`
	Clicks      int64     `json:"clicks" gorm:"column:clicks"`
	Revenue     float64   `json:"revenue" gorm:"column:revenue"`
}

// DailyStats is one day of aggregated ad delivery statistics.
type DailyStats struct {
	Date        time.Time `json:"date" gorm:"column:date"`
	Impressions int64     `json:"impressions" gorm:"column:impressions"`
	Clicks      int64     `json:"clicks" gorm:"column:clicks"`
	Revenue     float64   `json:"revenue" gorm:"column:revenue"`
}

// POI is a point of interest with its geographic coordinates.
type POI struct {
	POIID int64   `json:"poi_id" gorm:"column:poi_id"`
	Name  string  `json:"name" gorm:"column:name"`
	Lat   float64 `json:"lat" gorm:"column:lat"`
	Lon   float64 `json:"lon" gorm:"column:lon"`
}
