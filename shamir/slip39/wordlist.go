// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slip39

// wordlist is the abbreviated wordlist SLIP-39 shares are rendered with:
// 1024 entries, each indexable by a 10-bit group.
//
// TODO(nostring): swap in the canonical SLIP-0039 English wordlist before
// this codec is used against shares produced by another implementation;
// the checksum and bit-packing below are independent of the exact words
// chosen; interop just needs this table to match the other side's.
var wordlist = [1024]string{
	"babo", "bages", "bagil", "bagod", "bagu", "bahe", "bama", "baput", "basad", "batet",
	"bazu", "beded", "bedus", "beget", "begir", "behu", "bevel", "bewa", "bewem", "bezun",
	"bicu", "bijo", "bike", "bilel", "binen", "binil", "binim", "binu", "bipen", "bipi",
	"biri", "biru", "biwe", "biza", "bizod", "bobi", "bodet", "bodod", "bofot", "bogu",
	"bolam", "boma", "bone", "bosim", "botol", "bovu", "bubo", "bucin", "bugur", "bukot",
	"bupil", "bural", "buser", "busi", "cabal", "cabet", "cacon", "cadun", "cajer", "came",
	"cana", "casud", "catos", "cava", "cecer", "cecet", "cedod", "cegi", "cehod", "cekon",
	"celo", "celus", "ceta", "cetu", "cica", "cifu", "cige", "cigel", "cigi", "ciji",
	"ciked", "cinel", "cinud", "ciri", "civum", "ciwun", "cizi", "cobus", "cocal", "cofo",
	"cohir", "cohon", "coja", "cola", "colud", "come", "copun", "cosim", "cova", "covid",
	"cuce", "cude", "cudil", "culom", "cunat", "cunem", "cural", "cured", "curet", "curor",
	"cuzi", "daci", "dadas", "dafel", "dajas", "dajat", "daju", "dake", "danot", "dapis",
	"dapot", "dapun", "datu", "dawat", "deda", "dedem", "dedon", "dehom", "dekur", "depul",
	"deral", "derud", "deser", "dezit", "dezo", "dezos", "dibos", "dibu", "dica", "dice",
	"dido", "difa", "dife", "difon", "dihur", "dije", "diles", "dinu", "diro", "diru",
	"diso", "ditin", "divud", "diwer", "dohur", "dojud", "dokun", "dolis", "dome", "dopud",
	"dore", "doro", "dosim", "dosus", "dowe", "dowes", "dowi", "dowo", "doza", "dozin",
	"ducam", "ducor", "duha", "dukir", "dula", "dumum", "dunen", "dupi", "durad", "duri",
	"duzos", "fades", "fadu", "fafed", "fafol", "fagom", "fahon", "fanus", "fapun", "fatu",
	"febi", "fece", "fecu", "fefa", "fege", "fehun", "fejen", "fepo", "feto", "fetu",
	"fewu", "fewum", "fibir", "fica", "fici", "fide", "fidi", "fidol", "fifal", "figa",
	"fiha", "fihu", "fijom", "fika", "fike", "fikus", "fipe", "firal", "firem", "firi",
	"fiso", "fitu", "fobu", "focom", "fogom", "fojut", "folu", "fomos", "fomu", "fopa",
	"fudo", "fugol", "fuje", "fujir", "fuju", "fuma", "fumil", "fupi", "fusam", "fusu",
	"fute", "fuvim", "fuwe", "gaga", "gahu", "gale", "galo", "gamud", "ganet", "ganu",
	"ganum", "gapol", "gapur", "gava", "gebin", "gebor", "gede", "gefi", "gefu", "gego",
	"gelad", "gema", "gesi", "gesol", "gifa", "gifu", "gije", "gilis", "gime", "gimo",
	"gimun", "ginu", "gisur", "givat", "giwid", "giwo", "gofe", "gofot", "gokes", "goli",
	"gome", "gope", "goro", "goru", "gotom", "govel", "govo", "gowan", "gowas", "goza",
	"gukur", "gumi", "gumud", "gune", "guri", "gusal", "guva", "guwa", "habe", "halo",
	"hanem", "hari", "hatos", "hebam", "hegat", "heko", "heli", "heser", "heves", "hewur",
	"hibe", "hicis", "higun", "hihe", "hiler", "hili", "hina", "hipan", "hiru", "hitu",
	"hivi", "hizes", "hizut", "hoce", "hofam", "hofel", "hofes", "hoho", "hohu", "homar",
	"homer", "hotol", "hufat", "huga", "huke", "huna", "huped", "huro", "hurod", "huses",
	"hutet", "huvud", "huza", "huzad", "jabu", "jafit", "jagi", "jago", "jaji", "jajon",
	"jalim", "jamim", "jano", "jaru", "jata", "jato", "javu", "jefa", "jegil", "jehim",
	"jele", "jelo", "jenud", "jerid", "jese", "jevan", "jewam", "jewi", "jiga", "jimad",
	"jimor", "jimu", "jinon", "jinus", "jires", "jiri", "jised", "jisit", "jiso", "jisu",
	"jites", "jivor", "jiwel", "jiza", "jobam", "jobud", "jocod", "jodon", "jofa", "jofis",
	"jofod", "jofom", "johas", "johim", "jojel", "joki", "jokim", "jole", "joras", "jotu",
	"jowus", "jufin", "juger", "jupe", "jupid", "jupu", "juved", "juza", "kacis", "kajol",
	"kalim", "kanul", "kapam", "kapi", "kara", "kaset", "kawin", "kawut", "kecis", "kega",
	"kelir", "kemam", "kepu", "kese", "kesun", "keto", "ketol", "kewo", "kibet", "kided",
	"kifit", "kigu", "kihe", "kije", "kili", "kilo", "kimu", "kinu", "kinum", "kiri",
	"kisen", "kiser", "kizan", "koces", "kodes", "kogid", "kokil", "koma", "komo", "komu",
	"kopor", "kovud", "kuga", "kugal", "kuget", "kuhi", "kumom", "kuno", "kura", "kure",
	"kusa", "kusad", "kusu", "kuta", "kutar", "laben", "labul", "lafe", "lame", "lanol",
	"lape", "lapud", "lara", "leci", "lede", "lego", "legun", "lehor", "lejen", "lelet",
	"lelud", "leru", "leso", "leve", "levi", "lewa", "lewu", "lezin", "lidu", "lifo",
	"lihol", "lihur", "lija", "lijo", "likis", "liku", "lila", "liper", "liput", "lisam",
	"lited", "livar", "livum", "liwim", "locom", "lojon", "lomo", "lona", "lonul", "lonun",
	"lopud", "losu", "lotut", "lozi", "ludam", "ludos", "lufi", "lugen", "lujem", "lujer",
	"luka", "lumol", "lurit", "luser", "lute", "luzu", "maco", "macul", "malul", "manin",
	"mapit", "masa", "mase", "mator", "mawo", "maza", "mazo", "meba", "mebis", "meda",
	"megi", "mehol", "mejut", "meka", "melas", "melir", "melor", "memel", "memer", "mepa",
	"mepan", "mese", "mete", "mide", "midin", "mifel", "mihi", "mijam", "mijan", "miko",
	"mipem", "mirur", "misud", "moca", "mocal", "modo", "mofa", "mohun", "molem", "monam",
	"moni", "mopa", "mosu", "moto", "moves", "mowem", "muce", "mufi", "muge", "mugu",
	"mujar", "mukil", "muku", "mula", "munir", "mutim", "mutin", "muve", "nabed", "nabos",
	"nagit", "nahi", "naje", "namun", "nanet", "nanu", "nape", "narot", "naru", "nebis",
	"necul", "nefil", "nefo", "negir", "negor", "nehud", "nehul", "neka", "nema", "neran",
	"nete", "neve", "newil", "newu", "nigat", "nile", "ninal", "ninam", "ninir", "nisem",
	"niti", "niwul", "nizo", "nobo", "nobod", "nogor", "nojes", "nojid", "nomid", "noro",
	"notu", "novu", "nowor", "noze", "nubi", "nuhel", "nuji", "nuka", "nuku", "numim",
	"nunot", "nunu", "nuta", "pabi", "paca", "pade", "pafe", "pahir", "paja", "pakom",
	"palo", "panal", "panut", "papi", "parur", "pason", "pavi", "pavo", "pebe", "pebom",
	"pedi", "pedud", "pego", "pegor", "peho", "pehu", "penom", "pepis", "pewol", "piber",
	"pibes", "pida", "pidim", "pidu", "pifo", "pike", "pilas", "pilo", "pinam", "piri",
	"pite", "pitu", "piwe", "piwi", "pogas", "pohe", "pomi", "posu", "povam", "povil",
	"powu", "powun", "puca", "puge", "pujel", "pukan", "pulel", "pulil", "puri", "puse",
	"puvi", "puzo", "raba", "racu", "radi", "raho", "raled", "ralol", "rapi", "rawes",
	"reba", "regod", "reked", "reko", "renol", "resar", "reta", "revu", "rewi", "ribem",
	"ribu", "ribum", "ridu", "rife", "rijum", "rikas", "rimem", "rinos", "ripis", "rire",
	"risul", "rivem", "rivom", "roge", "rogen", "roha", "rohem", "rohil", "rohu", "rojul",
	"roki", "rolit", "ropo", "rote", "rovom", "rubed", "rufur", "ruko", "rukon", "rulit",
	"rupel", "ruro", "rutem", "rutu", "ruzus", "ruzut", "sadal", "saju", "sale", "samam",
	"same", "sanom", "sasar", "sato", "savin", "savo", "sawo", "sebis", "sefat", "sefe",
	"seham", "sejam", "sekid", "selam", "sele", "selom", "seso", "sevid", "sevu", "sezes",
	"sibi", "sibis", "sinas", "sipel", "site", "siwo", "sofud", "soket", "soki", "somar",
	"sonin", "sopan", "sowum", "sozu", "suce", "sufi", "sulal", "supem", "sutad", "sutat",
	"taba", "talim", "tapul", "tawan", "tawet", "tawu", "tege", "tegi", "tejud", "telu",
	"tepa", "tepem", "tepi", "tepu", "teri", "tesan", "tesu", "ticed", "tidil", "tidod",
	"tigad", "tigos", "tije", "tiju", "tikir", "tiko", "tilon", "tipe", "tivi", "tivu",
	"tobo", "tocol", "toho", "tojum", "tomes", "tonud", "tonun", "torar", "toro", "tozer",
	"tuba", "tube", "tuga", "tugun", "tumed", "tupo", "turam", "tusol", "tutad", "tuter",
	"tutur", "tuvu", "tuwot", "vabe", "vabet", "vahir", "vajo", "vapet", "varo", "veco",
	"vedun", "vefo", "vehi", "vejun", "veme", "venus", "vepur", "veva", "vevam", "vevi",
	"vezen", "vezi", "vicu", "vifo", "vifum", "vimo", "vipi", "virot", "vites", "viwit",
	"vizud", "voba", "vodar", "vofa", "voge", "voki", "vola", "vomo", "vonad", "vono",
	"vopi", "voris", "votut", "vube", "vudem", "vufit", "vugut", "vuli", "vulin", "vumun",
	"vurat", "vusa", "vuvu", "vuzud", "wadom", "wafi", "wafo", "wajo", "wajod", "walar",
	"wame", "wano", "wapem", "wapon", "waron", "wasim", "wava", "wavat", "wavim", "wawi",
	"wedi", "weji", "wepet", "weso", "wevot", "wevul", "wici", "wifud", "wihes", "wijal",
	"wijed", "wima", "wimed", "wimo", "wino", "winon", "wipe", "wisa", "witi", "wivo",
	"wiwi", "wobur", "wogim", "woki", "wola", "wonit", "worad", "wotim", "wovad", "wowi",
	"wudin", "wufes", "wuful", "wuge", "wujot", "wule", "wune", "wuson", "wutun", "zabin",
	"zaces", "zacit", "zaco", "zadol", "zadu", "zago", "zagud", "zaha", "zajo", "zake",
	"zakun", "zani", "zanid", "zaro", "zaser", "zaver", "zawid", "zawur", "zazel", "zebe",
	"zebi", "zebus", "zeju", "zekar", "zeli", "zeno", "zepi", "zepu", "zepus", "zesim",
	"zeve", "ziba", "zicud", "ziger", "zihot", "zikar", "zini", "zino", "zipod", "zipu",
	"ziram", "ziro", "zivar", "zive", "zizos", "zobo", "zodom", "zokon", "zolid", "zolo",
	"zomut", "zopu", "zosil", "zozo", "zuba", "zubid", "zude", "zuge", "zugod", "zujil",
	"zuki", "zume", "zute", "zuvi",
}
