package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/utils"
)

func TestActiveByMobileFilter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := activeByMobileFilter("9876543210", now)

	assert.Equal(t, "9876543210", f["mobile"])
	assert.Equal(t, bson.M{"$gt": now}, f["otpExpires"])
}

func TestPaidUpdate_SetsCompletedAndVerified(t *testing.T) {
	now := time.Now()
	u := paidUpdate(models.PaymentUpdate{PaymentID: "pay_1", OrderID: "order_1", AmountPaid: 500}, now)
	set := u["$set"].(bson.M)

	assert.Equal(t, "pay_1", set["paymentId"])
	assert.Equal(t, "order_1", set["orderId"])
	assert.Equal(t, models.PaymentCompleted, set["paymentStatus"])
	assert.Equal(t, float64(500), set["amountPaid"])
	assert.Equal(t, true, set["isVerified"])
}

func TestVerifiedUpdate_NeverClearsFlag(t *testing.T) {
	set := verifiedUpdate(time.Now())["$set"].(bson.M)
	assert.Equal(t, true, set["isVerified"])
	assert.NotContains(t, set, "paymentStatus")
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))
	assert.ErrorIs(t, classifyError(mongo.ErrNoDocuments), ErrNotFound)

	unavailable := classifyError(mongo.ErrClientDisconnected)
	assert.True(t, utils.IsKind(unavailable, utils.KindUnavailable))
	assert.True(t, utils.IsKind(classifyError(context.DeadlineExceeded), utils.KindUnavailable))

	other := classifyError(errors.New("document failed validation"))
	assert.True(t, utils.IsKind(other, utils.KindInternal))
	assert.Contains(t, utils.AsAppError(other).Message, "document failed validation")
}

func TestPendingByIDFilter(t *testing.T) {
	id := primitive.NewObjectID()
	f := pendingByIDFilter(id)

	assert.Equal(t, id, f["_id"])
	assert.Equal(t, models.PaymentPending, f["paymentStatus"])
}
