package model

import "time"

// Sample is one historical reading kept for the temperature graph.
type Sample struct {
	ID        int64     `json:"id"`
	TimeStamp time.Time `json:"timestamp"`
	EntityID  string    `json:"entity_id"`
	Value     string    `json:"value"`
	Unit      string    `json:"unit_of_measurement"`
}

type Samples []Sample
