package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the actor identity as seen by the audit trail. Only the fields needed
// for the display-name snapshot and role routing are read.
type User struct {
	UserId primitive.ObjectID `json:"user_id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Email  string             `json:"email" bson:"email"`
	Role   string             `json:"role" bson:"role"`
}
