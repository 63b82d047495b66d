package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student represents a gym member managed by an admin.
// Students do not have an Admin account; they log in with the
// username/password pair stored on their own record.
type Student struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Admin who created this student
	Name         string             `bson:"name" json:"name"`
	Age          int                `bson:"age" json:"age"` // Valid range: 12-120
	Goal         string             `bson:"goal" json:"goal"`
	MedicalNotes string             `bson:"medicalNotes,omitempty" json:"medicalNotes,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	PhotoKey     string             `bson:"photoKey,omitempty" json:"-"` // Object key in photo storage - internal use
	Username     string             `bson:"username" json:"username"`    // Should be unique
	// Stored and compared as-is. Inherited from the original system; any
	// hardening (hashing, lockout) changes observable login behavior.
	Password  string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StudentUpdate carries a partial update for a student record.
// Nil fields are left untouched.
type StudentUpdate struct {
	Name         *string `bson:"name,omitempty"`
	Age          *int    `bson:"age,omitempty"`
	Goal         *string `bson:"goal,omitempty"`
	MedicalNotes *string `bson:"medicalNotes,omitempty"`
	Active       *bool   `bson:"active,omitempty"`
	Username     *string `bson:"username,omitempty"`
	Password     *string `bson:"password,omitempty"`
}

// StudentProfile is the subset of student fields returned by a
// successful student login.
type StudentProfile struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Username     string             `json:"username"`
	Age          int                `json:"age"`
	Goal         string             `json:"goal"`
	MedicalNotes string             `json:"medicalNotes,omitempty"`
}
