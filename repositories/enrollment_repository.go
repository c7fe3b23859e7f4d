package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/utils"
)

// ErrNotFound is returned when no enrollment matches a lookup.
var ErrNotFound = errors.New("enrollment not found")

// ErrAlreadyPaid is returned by MarkPaid, together with the stored record,
// when the matched enrollment was already completed. The record is unchanged.
var ErrAlreadyPaid = errors.New("enrollment already paid")

// maxActiveCandidates bounds how many unexpired records a verification inspects.
const maxActiveCandidates = 10

// EnrollmentStore persists enrollment records.
type EnrollmentStore interface {
	Create(ctx context.Context, rec *models.EnrollmentRecord) error
	FindActiveByMobile(ctx context.Context, mobile string, now time.Time) ([]models.EnrollmentRecord, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.EnrollmentRecord, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	MarkPaid(ctx context.Context, email, mobile string, upd models.PaymentUpdate) (*models.EnrollmentRecord, error)
	Ping(ctx context.Context) error
}

type EnrollmentRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewEnrollmentRepository(client *mongo.Client, dbName, collection string) *EnrollmentRepository {
	return &EnrollmentRepository{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
	}
}

func (r *EnrollmentRepository) Create(ctx context.Context, rec *models.EnrollmentRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, rec)
	return classifyError(err)
}

func (r *EnrollmentRepository) FindActiveByMobile(ctx context.Context, mobile string, now time.Time) ([]models.EnrollmentRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(maxActiveCandidates)

	cursor, err := r.collection.Find(ctx, activeByMobileFilter(mobile, now), opts)
	if err != nil {
		return nil, classifyError(err)
	}
	defer cursor.Close(ctx)

	var records []models.EnrollmentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, classifyError(err)
	}
	return records, nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EnrollmentRecord, error) {
	var rec models.EnrollmentRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, classifyError(err)
	}
	return &rec, nil
}

func (r *EnrollmentRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, verifiedUpdate(time.Now()))
	if err != nil {
		return classifyError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid completes payment on the most recent record for (email, mobile).
// A completed record is never overwritten; see ErrAlreadyPaid.
func (r *EnrollmentRepository) MarkPaid(ctx context.Context, email, mobile string, upd models.PaymentUpdate) (*models.EnrollmentRecord, error) {
	var latest models.EnrollmentRecord
	findOpts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := r.collection.FindOne(ctx, bson.M{"email": email, "mobile": mobile}, findOpts).Decode(&latest); err != nil {
		return nil, classifyError(err)
	}
	if latest.IsPaid() {
		return &latest, ErrAlreadyPaid
	}

	updateOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec models.EnrollmentRecord
	err := r.collection.FindOneAndUpdate(ctx, pendingByIDFilter(latest.ID), paidUpdate(upd, time.Now()), updateOpts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// completed by a concurrent verification
		paid, ferr := r.FindByID(ctx, latest.ID)
		if ferr != nil {
			return nil, ferr
		}
		return paid, ErrAlreadyPaid
	}
	if err != nil {
		return nil, classifyError(err)
	}
	return &rec, nil
}

func (r *EnrollmentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func activeByMobileFilter(mobile string, now time.Time) bson.M {
	return bson.M{
		"mobile":     mobile,
		"otpExpires": bson.M{"$gt": now},
	}
}

func pendingByIDFilter(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "paymentStatus": models.PaymentPending}
}

func verifiedUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{"isVerified": true, "updatedAt": now}}
}

func paidUpdate(upd models.PaymentUpdate, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"paymentId":     upd.PaymentID,
		"orderId":       upd.OrderID,
		"paymentStatus": models.PaymentCompleted,
		"amountPaid":    upd.AmountPaid,
		"isVerified":    true,
		"updatedAt":     now,
	}}
}

// classifyError maps driver errors onto ErrNotFound and the application error kinds.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, topology.ErrServerSelectionTimeout):
		return utils.UnavailableError(err)
	default:
		return utils.InternalError(err)
	}
}
