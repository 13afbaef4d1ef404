//go:build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hmnpros/gateway/client"
	"github.com/hmnpros/gateway/x/admin"
	"github.com/hmnpros/gateway/x/appointment"
	"github.com/hmnpros/gateway/x/auth"
	"github.com/hmnpros/gateway/x/booking"
	"github.com/hmnpros/gateway/x/contact"
	"github.com/hmnpros/gateway/x/jwt"
	"github.com/hmnpros/gateway/x/opportunity"
	"github.com/hmnpros/gateway/x/ratelimit"
	"github.com/hmnpros/gateway/x/util"
	"github.com/hmnpros/gateway/x/webhook"
)

var webhookProvider = wire.NewSet(webhook.NewHandler, webhook.NewService, webhook.NewRepository)
var bookingProvider = wire.NewSet(booking.NewHandler, booking.NewService, booking.NewRepository, client.NewClient, wire.FieldsOf(new(util.Config), "Crm"))
var authProvider = wire.NewSet(auth.NewService, jwt.NewRepository)

func SetupWebhookHandler(db *gorm.DB, rdb *redis.Client, dispatcher *webhook.Dispatcher, config util.Config) *webhook.Handler {
	wire.Build(webhookProvider)
	return nil
}

func SetupContactService(db *gorm.DB, mc *memcache.Client) contact.Service {
	wire.Build(contact.NewService, contact.NewRepository)
	return nil
}

func SetupOpportunityService(db *gorm.DB) opportunity.Service {
	wire.Build(opportunity.NewService, opportunity.NewRepository)
	return nil
}

func SetupAppointmentService(db *gorm.DB) appointment.Service {
	wire.Build(appointment.NewService, appointment.NewRepository)
	return nil
}

func SetupBookingHandler(db *gorm.DB, config util.Config) *booking.Handler {
	wire.Build(bookingProvider)
	return nil
}

func SetupAuthService(rdb *redis.Client, config util.Config) auth.Service {
	wire.Build(authProvider)
	return nil
}

func SetupAuthHandler(rdb *redis.Client, config util.Config) *auth.Handler {
	wire.Build(auth.NewHandler, authProvider)
	return nil
}

func SetupAdminHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, limiter ratelimit.Service) *admin.Handler {
	wire.Build(admin.NewHandler, admin.NewService, webhook.NewRepository)
	return nil
}
