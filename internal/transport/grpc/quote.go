package grpc

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/service"
)

const (
	BookingQuoteServiceName = "innkeep.v1.BookingQuote"
	QuoteFullMethod         = "/" + BookingQuoteServiceName + "/Quote"
)

// BookingQuoter prices a booking draft without storing it.
type BookingQuoter interface {
	Location() *time.Location
	Quote(ctx context.Context, input service.BookingInput) (*booking.Submission, error)
}

// BookingQuoteServer is the server API of innkeep.v1.BookingQuote. Messages
// are google.protobuf.Struct so clients need no generated stubs.
type BookingQuoteServer interface {
	Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterBookingQuoteServer(s grpc.ServiceRegistrar, srv BookingQuoteServer) {
	s.RegisterService(&bookingQuoteServiceDesc, srv)
}

var bookingQuoteServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingQuoteServiceName,
	HandlerType: (*BookingQuoteServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Quote", Handler: quoteMethodHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "innkeep/v1/booking_quote.proto",
}

func quoteMethodHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingQuoteServer).Quote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QuoteFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingQuoteServer).Quote(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type quoteHandler struct {
	quotes BookingQuoter
}

func NewQuoteHandler(quotes BookingQuoter) BookingQuoteServer {
	return &quoteHandler{quotes: quotes}
}

// Quote reads {hotel_id, check_in, check_out, guests, rooms} and answers
// with the priced stay.
func (h *quoteHandler) Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	loc := h.quotes.Location()

	hotelID, err := uuid.Parse(fields["hotel_id"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "hotel_id must be a UUID")
	}
	checkIn, err := booking.ParseDate(fields["check_in"].GetStringValue(), loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "check_in must be a date")
	}
	checkOut, err := booking.ParseDate(fields["check_out"].GetStringValue(), loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "check_out must be a date")
	}

	guests, ok := wholeNumber(fields["guests"].GetNumberValue())
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "guests must be a whole number")
	}

	var rooms []string
	for _, v := range fields["rooms"].GetListValue().GetValues() {
		rooms = append(rooms, v.GetStringValue())
	}

	sub, err := h.quotes.Quote(ctx, service.BookingInput{
		HotelID:   hotelID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    guests,
		RoomTypes: rooms,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	names := make([]any, len(sub.RoomNames))
	for i, n := range sub.RoomNames {
		names[i] = n
	}
	return structpb.NewStruct(map[string]any{
		"hotel_id":       sub.HotelID,
		"check_in":       sub.CheckIn.In(loc).Format(time.DateOnly),
		"check_out":      sub.CheckOut.In(loc).Format(time.DateOnly),
		"guests":         sub.Guests,
		"rooms":          names,
		"nights":         sub.Nights,
		"total_capacity": sub.TotalCapacity,
		"total_price":    sub.TotalPrice.StringFixed(2),
	})
}

// wholeNumber converts a JSON number to an int when it has no fractional part
// and fits in 32 bits.
func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
