package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

// siteConfigID is the key of the single overrides document.
const siteConfigID = "site"

type siteConfigRepository struct {
	col      *mongo.Collection
	readOnly bool
}

func (r siteConfigRepository) Load(ctx context.Context) (domainsiteconfig.Config, bool, error) {
	var doc siteConfigDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": siteConfigID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainsiteconfig.Config{}, false, nil
		}
		return domainsiteconfig.Config{}, false, err
	}
	return doc.toConfig(), true, nil
}

func (r siteConfigRepository) Save(ctx context.Context, cfg domainsiteconfig.Config) error {
	if r.readOnly {
		return ErrReadOnly
	}
	doc := newSiteConfigDocument(cfg)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": siteConfigID}, doc, options.Replace().SetUpsert(true))
	return mapWriteErr(err)
}

type siteConfigDocument struct {
	ID           string        `bson:"_id"`
	HotelName    string        `bson:"hotel_name,omitempty"`
	Tagline      string        `bson:"tagline,omitempty"`
	Currency     string        `bson:"currency,omitempty"`
	CheckInTime  string        `bson:"check_in_time,omitempty"`
	CheckOutTime string        `bson:"check_out_time,omitempty"`
	Contact      contactDoc    `bson:"contact"`
	Navigation   []navEntryDoc `bson:"navigation"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

type contactDoc struct {
	Phone   string `bson:"phone,omitempty"`
	Email   string `bson:"email,omitempty"`
	Address string `bson:"address,omitempty"`
}

type navEntryDoc struct {
	Key     string `bson:"key"`
	Label   string `bson:"label,omitempty"`
	Path    string `bson:"path,omitempty"`
	Visible bool   `bson:"visible"`
}

func newSiteConfigDocument(c domainsiteconfig.Config) siteConfigDocument {
	nav := make([]navEntryDoc, 0, len(c.Navigation))
	for _, e := range c.Navigation {
		nav = append(nav, navEntryDoc{Key: e.Key, Label: e.Label, Path: e.Path, Visible: e.Visible})
	}
	return siteConfigDocument{
		ID:           siteConfigID,
		HotelName:    c.HotelName,
		Tagline:      c.Tagline,
		Currency:     c.Currency,
		CheckInTime:  c.CheckInTime,
		CheckOutTime: c.CheckOutTime,
		Contact:      contactDoc{Phone: c.Contact.Phone, Email: c.Contact.Email, Address: c.Contact.Address},
		Navigation:   nav,
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (d siteConfigDocument) toConfig() domainsiteconfig.Config {
	nav := make([]domainsiteconfig.NavEntry, 0, len(d.Navigation))
	for _, e := range d.Navigation {
		nav = append(nav, domainsiteconfig.NavEntry{Key: e.Key, Label: e.Label, Path: e.Path, Visible: e.Visible})
	}
	return domainsiteconfig.Config{
		HotelName:    d.HotelName,
		Tagline:      d.Tagline,
		Currency:     d.Currency,
		CheckInTime:  d.CheckInTime,
		CheckOutTime: d.CheckOutTime,
		Contact:      domainsiteconfig.Contact{Phone: d.Contact.Phone, Email: d.Contact.Email, Address: d.Contact.Address},
		Navigation:   nav,
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
