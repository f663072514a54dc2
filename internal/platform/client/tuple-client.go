package client

import (
	"fmt"

	"TupleDB/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	db_endpoint   = "/db"
	sync_endpoint = "/db/sync"
)

// TupleClient talks to a TupleDB instance over its HTTP API.
type TupleClient struct {
	client    *resty.Client
	serverUrl string
}

func NewTupleClient(serverUrl string) *TupleClient {
	return &TupleClient{
		client:    resty.New(),
		serverUrl: serverUrl,
	}
}

type saveTupleRequest struct {
	Value uint32 `json:"value"`
}

func (c *TupleClient) Get(id uint32) (*domain.Tuple, bool, error) {
	var resp domain.Tuple
	uri := fmt.Sprintf("%s%s/%d", c.serverUrl, db_endpoint, id)

	r, err := c.client.R().SetResult(&resp).Get(uri)
	if err != nil {
		return nil, false, err
	}
	if r.StatusCode() == 404 {
		return nil, false, nil
	}
	if r.IsError() {
		return nil, false, fmt.Errorf("get %d: status %d", id, r.StatusCode())
	}
	return &resp, true, nil
}

func (c *TupleClient) Save(id, value uint32) (*domain.Tuple, error) {
	var resp domain.Tuple
	uri := fmt.Sprintf("%s%s/%d", c.serverUrl, db_endpoint, id)

	r, err := c.client.R().SetResult(&resp).SetBody(&saveTupleRequest{Value: value}).Post(uri)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, fmt.Errorf("save %d: status %d", id, r.StatusCode())
	}
	return &resp, nil
}

func (c *TupleClient) Delete(id uint32) (bool, error) {
	uri := fmt.Sprintf("%s%s/%d", c.serverUrl, db_endpoint, id)

	r, err := c.client.R().Delete(uri)
	if err != nil {
		return false, err
	}
	if r.StatusCode() == 404 {
		return false, nil
	}
	if r.IsError() {
		return false, fmt.Errorf("delete %d: status %d", id, r.StatusCode())
	}
	return true, nil
}

func (c *TupleClient) Scan() ([]domain.Tuple, error) {
	var resp []domain.Tuple
	uri := c.serverUrl + db_endpoint

	r, err := c.client.R().SetResult(&resp).Get(uri)
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, fmt.Errorf("scan: status %d", r.StatusCode())
	}
	return resp, nil
}

func (c *TupleClient) Sync() error {
	uri := c.serverUrl + sync_endpoint

	r, err := c.client.R().Post(uri)
	if err != nil {
		return err
	}
	if r.IsError() {
		return fmt.Errorf("sync: status %d", r.StatusCode())
	}
	return nil
}
