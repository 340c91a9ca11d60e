package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/stayhaven/viewer-service/internal/application/viewer"
	"github.com/stayhaven/viewer-service/internal/domain"
)

// ViewerStore keeps each viewer as a Redis hash at viewer:<id>.
// Listings and bookings are JSON-encoded arrays inside the hash; income
// is a stringified integer. FindAndUpdate runs as a Lua script so the
// existence check and the patch are one atomic step.
type ViewerStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewViewerStore(c *Client) *ViewerStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &ViewerStore{rdb: rdb, prefix: "viewer:"}
}

// Atomic patch: bail out when the key does not exist, otherwise write the
// token (and identity fields when ARGV[2]=="1") and return the full hash.
const findAndUpdateLua = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return nil
end
redis.call("HSET", KEYS[1], "token", ARGV[1])
if ARGV[2] == "1" then
  redis.call("HSET", KEYS[1], "name", ARGV[3], "email", ARGV[4], "avatar", ARGV[5])
end
return redis.call("HGETALL", KEYS[1])
`

func (s *ViewerStore) FindAndUpdate(ctx context.Context, id string, p viewer.Patch) (domain.Viewer, bool, error) {
	var zero domain.Viewer
	if s.rdb == nil {
		return zero, false, errors.New("redis viewer store not configured")
	}

	args := []any{p.Token, "0", "", "", ""}
	if p.Identity != nil {
		args = []any{p.Token, "1", p.Identity.DisplayName, p.Identity.Email, p.Identity.AvatarURL}
	}

	res, err := s.rdb.Eval(ctx, findAndUpdateLua, []string{s.prefix + id}, args...).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return zero, false, nil
		}
		return zero, false, err
	}

	fields, ok := res.([]any)
	if !ok {
		return zero, false, errors.New("unexpected script result")
	}
	v, err := viewerFromPairs(id, fields)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (s *ViewerStore) Insert(ctx context.Context, v domain.Viewer) error {
	if s.rdb == nil {
		return errors.New("redis viewer store not configured")
	}
	if v.ID == "" {
		return domain.ErrInternal(nil)
	}

	listings, err := json.Marshal(v.Listings)
	if err != nil {
		return err
	}
	bookings, err := json.Marshal(v.Bookings)
	if err != nil {
		return err
	}

	return s.rdb.HSet(ctx, s.prefix+v.ID,
		"name", v.Name,
		"email", v.Email,
		"avatar", v.Avatar,
		"token", v.Token,
		"wallet", v.WalletBinding,
		"income", strconv.FormatInt(v.Income, 10),
		"listings", string(listings),
		"bookings", string(bookings),
	).Err()
}

func (s *ViewerStore) Find(ctx context.Context, id string) (domain.Viewer, bool, error) {
	var zero domain.Viewer
	if s.rdb == nil {
		return zero, false, errors.New("redis viewer store not configured")
	}

	m, err := s.rdb.HGetAll(ctx, s.prefix+id).Result()
	if err != nil {
		return zero, false, err
	}
	if len(m) == 0 {
		return zero, false, nil
	}
	v, err := viewerFromMap(id, m)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// ---- helpers ----

func viewerFromPairs(id string, pairs []any) (domain.Viewer, error) {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, kok := pairs[i].(string)
		val, vok := pairs[i+1].(string)
		if !kok || !vok {
			return domain.Viewer{}, errors.New("unexpected hash field type")
		}
		m[k] = val
	}
	return viewerFromMap(id, m)
}

func viewerFromMap(id string, m map[string]string) (domain.Viewer, error) {
	v := domain.Viewer{
		ID:            id,
		Name:          m["name"],
		Email:         m["email"],
		Avatar:        m["avatar"],
		Token:         m["token"],
		WalletBinding: m["wallet"],
		Listings:      []string{},
		Bookings:      []string{},
	}
	if raw := m["income"]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Viewer{}, err
		}
		v.Income = n
	}
	if raw := m["listings"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &v.Listings); err != nil {
			return domain.Viewer{}, err
		}
	}
	if raw := m["bookings"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &v.Bookings); err != nil {
			return domain.Viewer{}, err
		}
	}
	return v, nil
}
