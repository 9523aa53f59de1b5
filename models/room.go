package models

// RoomAnalysis describes the room used as generation context
type RoomAnalysis struct {
	WallColor  string   `bson:"wall_color" json:"wallColor"`
	FloorColor string   `bson:"floor_color" json:"floorColor"`
	Palette    []string `bson:"palette" json:"palette"`
	Brightness float64  `bson:"brightness" json:"brightness"`
	Style      string   `bson:"style" json:"style"`
	Notes      string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// RoomIntake is the result of storing a room photograph
type RoomIntake struct {
	RoomRef  string       `json:"roomPath"`
	Analysis RoomAnalysis `json:"analysis"`
}
