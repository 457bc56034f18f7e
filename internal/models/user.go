package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account of either a customer or a service provider. This
// service only reads users, for display names and contact addresses.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Role        string             `bson:"role" json:"role"` // "customer" or "service"
	ServiceType string             `bson:"service_type,omitempty" json:"serviceType,omitempty"`
	ServiceName string             `bson:"service_name,omitempty" json:"serviceName,omitempty"`
}

func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ServiceName
}
