// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import "github.com/pdiddy/cardio-medqa/pkg/types"

// CardiologyEN is the default English strict keyword list.
var CardiologyEN = []string{
	"heart disease",
	"cardiac",
	"cardiovascular",
	"coronary",
	"coronary artery",
	"CAD",
	"atherosclerosis",
	"angina",
	"myocardial infarction",
	"MI",
	"STEMI",
	"NSTEMI",
	"myocarditis",
	"pericarditis",
	"endocarditis",
	"heart failure",
	"CHF",
	"cardiomyopathy",
	"arrhythmia",
	"atrial fibrillation",
	"AFib",
	"ventricular tachycardia",
	"ventricular fibrillation",
	"valvular",
	"aortic stenosis",
	"mitral regurgitation",
}

// CardiologyZH is the default Chinese strict keyword list.
var CardiologyZH = []string{
	"心脏病",
	"心脏",
	"冠心病",
	"冠状动脉",
	"心肌梗死",
	"心梗",
	"心绞痛",
	"心衰",
	"心力衰竭",
	"心律失常",
	"房颤",
	"心肌炎",
	"心包炎",
	"心内膜炎",
	"心肌病",
	"瓣膜",
	"动脉粥样硬化",
}

// RelatedEN holds cardiovascular-adjacent English terms used only by the
// broad set.
var RelatedEN = []string{
	"chest pain",
	"hypertension",
	"hypotension",
	"blood pressure",
	"palpitations",
	"syncope",
	"murmur",
	"ECG",
	"EKG",
	"electrocardiogram",
	"echocardiogram",
	"troponin",
	"tachycardia",
	"bradycardia",
	"aortic",
	"mitral",
	"tricuspid",
	"aneurysm",
	"pulmonary embolism",
	"deep vein thrombosis",
	"hyperlipidemia",
	"cholesterol",
	"statin",
	"beta blocker",
	"anticoagulant",
	"warfarin",
	"digoxin",
	"nitroglycerin",
	"peripheral artery disease",
	"vasculitis",
	"shock",
}

// RelatedZH holds cardiovascular-adjacent Chinese terms used only by the
// broad set.
var RelatedZH = []string{
	"胸痛",
	"高血压",
	"低血压",
	"血压",
	"心悸",
	"晕厥",
	"杂音",
	"心电图",
	"超声心动图",
	"肌钙蛋白",
	"心动过速",
	"心动过缓",
	"主动脉",
	"动脉瘤",
	"肺栓塞",
	"深静脉血栓",
	"高脂血症",
	"胆固醇",
	"他汀",
	"抗凝",
	"华法林",
	"地高辛",
	"硝酸甘油",
	"血管炎",
	"休克",
}

// Strict returns the default cardiology keywords for lang. Unknown values
// fall back to both lists.
func Strict(lang types.Language) []string {
	return pick(lang, CardiologyEN, CardiologyZH)
}

// Related returns the default cardiovascular-adjacent keywords for lang.
func Related(lang types.Language) []string {
	return pick(lang, RelatedEN, RelatedZH)
}

func pick(lang types.Language, en, zh []string) []string {
	var out []string
	switch lang {
	case types.LanguageEN:
		out = append(out, en...)
	case types.LanguageZH:
		out = append(out, zh...)
	default:
		out = append(out, en...)
		out = append(out, zh...)
	}
	return out
}
