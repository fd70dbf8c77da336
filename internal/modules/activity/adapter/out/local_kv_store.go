package out

import (
	activityout "dsaboost/internal/modules/activity/port/out"
	"dsaboost/internal/platform/localstore"
)

func NewLocalKVStore(kv *localstore.FileKV) activityout.KeyValue {
	return kv
}
