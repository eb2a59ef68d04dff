package model

type Room struct {
	Id         string
	BuildingId string
	Capacity   int
}
