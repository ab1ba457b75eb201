package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"roombook/pkg/model"
)

type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(httpClient *HttpClient) *RoomClient {
	return &RoomClient{httpClient: httpClient}
}

type RoomFilter struct {
	Query    string
	Capacity string
	Active   *bool
}

func (c *RoomClient) List(ctx context.Context, filter RoomFilter) (*Response, error) {
	q := url.Values{}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Capacity != "" {
		q.Set("capacity", filter.Capacity)
	}
	if filter.Active != nil {
		q.Set("active", strconv.FormatBool(*filter.Active))
	}

	path := "/api/v1/rooms"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.httpClient.GET(ctx, path)
}

func (c *RoomClient) GetByID(ctx context.Context, id int64) (*Response, error) {
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/rooms/id/%d", id))
}

func (c *RoomClient) Availability(ctx context.Context, id int64, start, end time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	return c.httpClient.GET(ctx, fmt.Sprintf("/api/v1/rooms/id/%d/availability?%s", id, q.Encode()))
}

func (c *RoomClient) DecodeRoom(resp *Response) (*model.Room, error) {
	var room model.Room
	if err := decodeData(resp, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *RoomClient) DecodeRooms(resp *Response) ([]*model.Room, error) {
	var rooms []*model.Room
	if err := decodeData(resp, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *RoomClient) DecodeAvailability(resp *Response) (*model.Availability, error) {
	var availability model.Availability
	if err := decodeData(resp, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
