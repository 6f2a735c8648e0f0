// Package tool defines the fixed operation set the model may request and
// the gateway that executes requests against the barbershop engine.
package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/ai-alihassanml/BarberFlow-agent-langchain/agent/contract"
	bookingx "github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/booking"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/resolve"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/schedule"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

const (
	ToolSearchBarbers     = "search_barbers"
	ToolCheckSlots        = "check_slots"
	ToolBookAppointment   = "book_appointment"
	ToolCheckSpecificSlot = "check_specific_slot"
	ToolMyAppointments    = "my_appointments"
)

// Infos describes the tool set for model binding.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolSearchBarbers,
			Desc: "Search for available barbers, optionally filtered by specialty.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"specialty": {Type: schema.String, Desc: "Specialty to filter by (e.g. haircut, beard trim, styling)"},
			}),
		},
		{
			Name: ToolCheckSlots,
			Desc: "List all available time slots for a barber on a date. Accepts a barber id or name.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"barber_id": {Type: schema.String, Desc: "Barber id or name (e.g. 'John', 'John Smith')", Required: true},
				"date_str":  {Type: schema.String, Desc: "Date text (e.g. '2025-12-05', '3 dec 2025', 'tomorrow')", Required: true},
			}),
		},
		{
			Name: ToolBookAppointment,
			Desc: "Create a new appointment. Validates availability before booking and returns a confirmation number on success, or alternatives when the slot is taken.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_name":  {Type: schema.String, Desc: "Customer's full name", Required: true},
				"customer_email": {Type: schema.String, Desc: "Customer's email address", Required: true},
				"customer_phone": {Type: schema.String, Desc: "Customer's phone number", Required: true},
				"barber_id":      {Type: schema.String, Desc: "Barber id or name; names are resolved", Required: true},
				"barber_name":    {Type: schema.String, Desc: "Barber display name", Required: true},
				"service_type":   {Type: schema.String, Desc: "Service (e.g. haircut, beard trim)", Required: true},
				"datetime_str":   {Type: schema.String, Desc: "Date and time text (e.g. '3 dec 2025 at 6pm')", Required: true},
			}),
		},
		{
			Name: ToolCheckSpecificSlot,
			Desc: "Check whether a specific time is available for a barber; suggests alternatives when it is not. Use before booking a specific time.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"barber_name_or_id": {Type: schema.String, Desc: "Barber name or id (e.g. 'Sarah Davis', 'sara')", Required: true},
				"datetime_str":      {Type: schema.String, Desc: "Date and time text (e.g. '3 dec 2025 at 6pm')", Required: true},
			}),
		},
		{
			Name: ToolMyAppointments,
			Desc: "List all appointments for a customer by email address.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"email": {Type: schema.String, Desc: "Customer's email address", Required: true},
			}),
		},
	}
}

// Gateway executes tool requests against the engine. Requests within one
// call run concurrently; results come back in request order. Tool failures
// are values inside the ToolResult so the model can explain them.
type Gateway struct {
	barbers  store.Barbers
	resolver *resolve.BarberResolver
	engine   *schedule.Engine
	bookings *bookingx.Service
}

func NewGateway(barbers store.Barbers, resolver *resolve.BarberResolver, engine *schedule.Engine, bookings *bookingx.Service) *Gateway {
	return &Gateway{
		barbers:  barbers,
		resolver: resolver,
		engine:   engine,
		bookings: bookings,
	}
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func (g *Gateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req contractx.ToolRequest) {
			defer wg.Done()
			results[i] = g.execute(ctx, req)
		}(i, req)
	}
	wg.Wait()

	return results, nil
}

func (g *Gateway) execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	res := contractx.ToolResult{ID: req.ID, Tool: req.Tool}

	switch req.Tool {
	case ToolSearchBarbers:
		out, err := g.searchBarbers(ctx, req.Args)
		setResult(&res, out, err)
	case ToolCheckSlots:
		out, err := g.checkSlots(ctx, req.Args)
		setResult(&res, out, err)
	case ToolBookAppointment:
		res.Result = g.bookAppointment(ctx, req.Args)
	case ToolCheckSpecificSlot:
		res.Result = g.checkSpecificSlot(ctx, req.Args)
	case ToolMyAppointments:
		out, err := g.myAppointments(ctx, req.Args)
		setResult(&res, out, err)
	default:
		res.Error = fmt.Sprintf("tool=%s is not part of the catalog", req.Tool)
	}
	return res
}

func setResult(res *contractx.ToolResult, out any, err error) {
	if err != nil {
		res.Error = err.Error()
		return
	}
	res.Result = out
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, _ := args[key].(string)
	return v
}
